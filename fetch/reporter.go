// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/grantlens/core"
)

// reporterSearchBase is the NIH RePORTER project search endpoint.
// Declared as a var so tests can substitute an httptest server.
var reporterSearchBase = "https://api.reporter.nih.gov/v2/projects/search"

const (
	defaultPageSize    = 500
	defaultMaxRequests = 10
	defaultDelay       = time.Second
)

// Query describes a RePORTER project search.
type Query struct {
	// FiscalYears filters by award fiscal year. Empty defaults to the
	// previous calendar year, the most recent complete one.
	FiscalYears []int

	// SearchText restricts results to projects whose title or abstract
	// contain all the given terms.
	SearchText string

	// OrgNames filters by awardee organization names.
	OrgNames []string
}

// Client fetches grant records from the NIH RePORTER API. The API is
// public and unauthenticated but rate-limited, so the client sleeps
// between pages.
type Client struct {
	httpClient  *http.Client
	pageSize    int
	maxRequests int
	delay       time.Duration
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		if httpClient == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.httpClient = httpClient
		return nil
	}
}

// WithPageSize sets the records-per-request page size.
// The API caps pages at 500 records; default is 500.
func WithPageSize(size int) Option {
	return func(c *Client) error {
		if size < 1 || size > 500 {
			return fmt.Errorf("page size must be in [1, 500], got %d", size)
		}
		c.pageSize = size
		return nil
	}
}

// WithMaxRequests caps the number of page requests per fetch.
// Default is 10 (up to 5000 records).
func WithMaxRequests(n int) Option {
	return func(c *Client) error {
		if n < 1 {
			return fmt.Errorf("max requests must be positive, got %d", n)
		}
		c.maxRequests = n
		return nil
	}
}

// WithDelay sets the pause between page requests.
// Default is one second.
func WithDelay(d time.Duration) Option {
	return func(c *Client) error {
		if d < 0 {
			d = 0
		}
		c.delay = d
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewClient creates a RePORTER client.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		pageSize:    defaultPageSize,
		maxRequests: defaultMaxRequests,
		delay:       defaultDelay,
		logger:      slog.Default().With("component", "reporter-client"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Fetch pages through the search results and returns them as grant
// records. Pagination stops at the reported total, the request cap, or
// the first empty page, whichever comes first.
func (c *Client) Fetch(ctx context.Context, query Query) ([]*core.GrantRecord, error) {
	criteria := c.buildCriteria(query)

	var records []*core.GrantRecord
	total := -1
	offset := 0

	for request := 0; request < c.maxRequests; request++ {
		if request > 0 {
			if err := sleepCtx(ctx, c.delay); err != nil {
				return records, err
			}
		}

		criteria.Offset = offset
		page, meta, err := c.searchPage(ctx, criteria)
		if err != nil {
			return records, err
		}

		if total < 0 {
			total = meta.Total
			c.logger.Info("project search started", "total", total)
		}

		for _, project := range page {
			record, ok := mapProject(project)
			if !ok {
				c.logger.Warn("skipping project without application id",
					"title", project.ProjectTitle)
				continue
			}
			records = append(records, record)
		}

		offset += len(page)
		if len(page) == 0 || offset >= total {
			break
		}
	}

	c.logger.Info("project search finished", "fetched", len(records))
	return records, nil
}

func (c *Client) buildCriteria(query Query) *searchCriteria {
	fiscalYears := query.FiscalYears
	if len(fiscalYears) == 0 {
		fiscalYears = []int{time.Now().Year() - 1}
	}

	criteria := &searchCriteria{
		FiscalYears:           fiscalYears,
		IncludeActiveProjects: true,
		Limit:                 c.pageSize,
		OrganizationNames:     query.OrgNames,
	}

	if query.SearchText != "" {
		criteria.TextSearch = &textSearchParameters{
			Operator: "and",
			SearchFields: []searchField{
				{Field: "project_title"},
				{Field: "abstract"},
			},
			SearchText: query.SearchText,
		}
	}
	return criteria
}

func (c *Client) searchPage(ctx context.Context, criteria *searchCriteria) ([]reporterProject, *responseMeta, error) {
	body, err := json.Marshal(searchRequest{Criteria: criteria})
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reporterSearchBase, bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("RePORTER API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("RePORTER API returned HTTP %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, nil, fmt.Errorf("parsing RePORTER response: %w", err)
	}
	return sr.Results, &sr.Meta, nil
}

// mapProject converts an API project into a GrantRecord, cleaning
// missing fields. Returns false when the project has no usable
// identifier.
func mapProject(project reporterProject) (*core.GrantRecord, bool) {
	if project.ApplID == 0 {
		return nil, false
	}

	award := 0.0
	if project.AwardAmount != nil {
		award = *project.AwardAmount
	}
	if award < 0 {
		award = 0
	}

	metadata := map[string]string{}
	putMeta := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			metadata[key] = value
		}
	}
	putMeta("org_name", project.Organization.OrgName)
	putMeta("org_city", project.Organization.OrgCity)
	putMeta("org_state", project.Organization.OrgState)
	putMeta("activity_code", project.ActivityCode)
	putMeta("contact_pi_name", project.ContactPiName)
	putMeta("project_start_date", project.ProjectStartDate)
	putMeta("project_end_date", project.ProjectEndDate)

	return &core.GrantRecord{
		ID:          strconv.Itoa(project.ApplID),
		Title:       strings.TrimSpace(project.ProjectTitle),
		Abstract:    strings.TrimSpace(project.AbstractText),
		AwardAmount: award,
		FiscalYear:  project.FiscalYear,
		Metadata:    metadata,
	}, true
}

// sleepCtx sleeps for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RePORTER API JSON structures.
type searchRequest struct {
	Criteria *searchCriteria `json:"criteria"`
}

type searchCriteria struct {
	FiscalYears           []int                 `json:"fiscal_years"`
	IncludeActiveProjects bool                  `json:"include_active_projects"`
	Limit                 int                   `json:"limit"`
	Offset                int                   `json:"offset"`
	TextSearch            *textSearchParameters `json:"text_search_parameters,omitempty"`
	OrganizationNames     []string              `json:"organization_names,omitempty"`
}

type textSearchParameters struct {
	Operator     string        `json:"operator"`
	SearchFields []searchField `json:"search_fields"`
	SearchText   string        `json:"search_text"`
}

type searchField struct {
	Field string `json:"field"`
}

type searchResponse struct {
	Meta    responseMeta      `json:"meta"`
	Results []reporterProject `json:"results"`
}

type responseMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type reporterProject struct {
	ApplID           int                  `json:"appl_id"`
	ProjectTitle     string               `json:"project_title"`
	AbstractText     string               `json:"abstract_text"`
	AwardAmount      *float64             `json:"award_amount"`
	FiscalYear       int                  `json:"fiscal_year"`
	ActivityCode     string               `json:"activity_code"`
	ContactPiName    string               `json:"contact_pi_name"`
	ProjectStartDate string               `json:"project_start_date"`
	ProjectEndDate   string               `json:"project_end_date"`
	Organization     reporterOrganization `json:"organization"`
}

type reporterOrganization struct {
	OrgName  string `json:"org_name"`
	OrgCity  string `json:"org_city"`
	OrgState string `json:"org_state"`
}
