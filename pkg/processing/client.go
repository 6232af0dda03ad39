package processing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apihttp "github.com/zakjan/cads-api-client/internal/http"
)

// supportedAPIVersion is appended to the base URL unless WithExactURL is set.
const supportedAPIVersion = "v1"

// Relation names identifying a job's monitoring URL. Which one applies is
// fixed at the call site that produced the status document: a submission
// response links to the job via "monitor", a directly fetched status
// document via "self".
const (
	relMonitor = "monitor"
	relSelf    = "self"
)

// Client talks to a remote asynchronous job-processing API: it lists and
// describes processes, submits computations, inspects jobs and downloads
// their result artifacts.
type Client struct {
	baseURL         string
	http            *apihttp.Client
	sleepMax        time.Duration
	downloadTimeout time.Duration
	notifier        Notifier
}

// NewClient creates a client for the processing API rooted at url.
func NewClient(url string, opts ...Option) *Client {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	url = strings.TrimSuffix(url, "/")
	if !o.exactURL {
		url = url + "/" + supportedAPIVersion
	}

	return &Client{
		baseURL:         url,
		http:            apihttp.NewClient(o.http),
		sleepMax:        o.sleepMax,
		downloadTimeout: o.downloadTimeout,
		notifier:        o.notifier,
	}
}

func (c *Client) url(parts ...string) string {
	return c.baseURL + "/" + strings.Join(parts, "/")
}

// Fetch performs one GET against url and wraps the returned document.
func (c *Client) Fetch(ctx context.Context, url string) (*Response, error) {
	body, err := c.http.GetJSON(ctx, url)
	if err != nil {
		return nil, &CommunicationError{URL: url, Err: err}
	}
	return NewResponse(url, body)
}

// ProcessList is the document listing the processes offered by the API.
type ProcessList struct {
	*Response
}

// ProcessIDs returns the identifiers of the listed processes.
func (l *ProcessList) ProcessIDs() []string {
	return l.idList("processes")
}

// Processes lists the processes offered by the API.
func (c *Client) Processes(ctx context.Context) (*ProcessList, error) {
	resp, err := c.Fetch(ctx, c.url("processes"))
	if err != nil {
		return nil, err
	}
	return &ProcessList{Response: resp}, nil
}

// Process is the description document of a single process.
type Process struct {
	*Response
	c *Client
}

// ID returns the process identifier.
func (p *Process) ID() (string, error) {
	id, ok := p.stringField("id")
	if !ok {
		return "", &ProtocolError{URL: p.URL(), Reason: `missing "id" field`}
	}
	return id, nil
}

// Process fetches the description of a single process.
func (c *Client) Process(ctx context.Context, processID string) (*Process, error) {
	return c.ProcessFromURL(ctx, c.url("processes", processID))
}

// ProcessFromURL fetches a process description from an absolute URL, e.g.
// one resolved from a catalogue link.
func (c *Client) ProcessFromURL(ctx context.Context, url string) (*Process, error) {
	resp, err := c.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return &Process{Response: resp, c: c}, nil
}

// Execute submits inputs to this process and returns the resulting status
// document.
func (p *Process) Execute(ctx context.Context, inputs map[string]any) (*StatusInfo, error) {
	return p.c.execute(ctx, p.URL()+"/execute", inputs)
}

// Execute submits inputs to the named process.
func (c *Client) Execute(ctx context.Context, processID string, inputs map[string]any) (*StatusInfo, error) {
	return c.execute(ctx, c.url("processes", processID, "execute"), inputs)
}

func (c *Client) execute(ctx context.Context, url string, inputs map[string]any) (*StatusInfo, error) {
	payload, err := json.Marshal(map[string]any{"inputs": inputs})
	if err != nil {
		return nil, fmt.Errorf("encode inputs: %w", err)
	}

	body, err := c.http.PostJSON(ctx, url, payload)
	if err != nil {
		return nil, &CommunicationError{URL: url, Err: err}
	}

	resp, err := NewResponse(url, body)
	if err != nil {
		return nil, err
	}
	return &StatusInfo{Response: resp, rel: relMonitor, c: c}, nil
}

// StatusInfo is the status document returned when a job is submitted or
// fetched directly. It records which link relation identifies the job's
// monitoring URL.
type StatusInfo struct {
	*Response
	rel string
	c   *Client
}

// Remote resolves the monitoring URL from the tagged link relation and
// returns the job handle.
func (s *StatusInfo) Remote() (*Remote, error) {
	href, err := s.LinkHref(s.rel)
	if err != nil {
		return nil, err
	}
	return s.c.NewRemote(href), nil
}

// JobList is the document listing submitted jobs.
type JobList struct {
	*Response
}

// JobIDs returns the identifiers of the listed jobs.
func (l *JobList) JobIDs() []string {
	return l.idList("jobs")
}

// Jobs lists the caller's submitted jobs.
func (c *Client) Jobs(ctx context.Context) (*JobList, error) {
	resp, err := c.Fetch(ctx, c.url("jobs"))
	if err != nil {
		return nil, err
	}
	return &JobList{Response: resp}, nil
}

// Job fetches the status document of a single job.
func (c *Client) Job(ctx context.Context, jobID string) (*StatusInfo, error) {
	url := c.url("jobs", jobID)
	resp, err := c.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return &StatusInfo{Response: resp, rel: relSelf, c: c}, nil
}

// JobResults fetches the results document of a single job directly.
func (c *Client) JobResults(ctx context.Context, jobID string) (*Results, error) {
	resp, err := c.Fetch(ctx, c.url("jobs", jobID, "results"))
	if err != nil {
		return nil, err
	}
	return &Results{Response: resp, c: c}, nil
}
