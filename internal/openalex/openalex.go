// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package openalex is a typed client for the OpenAlex API covering the
// subset the corpus generator needs: filtered works listing with cursor
// pagination and single-institution lookup. Responses are parsed into
// explicit record types at the boundary so callers never inspect raw maps.
package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/lead-engine/internal/httputil"
	"github.com/pdiddy/lead-engine/pkg/types"
)

// apiBase is the OpenAlex API root. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://api.openalex.org"

// Client queries the OpenAlex API.
type Client struct {
	HTTP *http.Client

	// Email is sent as the mailto parameter for polite pool access.
	Email string

	// Config supplies the User-Agent header.
	Config types.HTTPConfig

	// MaxRetries bounds rate-limit retries per request.
	MaxRetries int

	// Gate, when set, bounds concurrent API calls and enforces the
	// post-call delay. The corpus generator shares one gate across all
	// of its clients.
	Gate *httputil.Gate
}

// WorksFilter restricts a works listing. Zero-value fields are omitted from
// the filter expression.
type WorksFilter struct {
	// PublicationYearAfter keeps works published strictly after this year.
	PublicationYearAfter int

	// InstitutionID keeps works with an authorship at this institution.
	InstitutionID string

	// CountryCode keeps works with an authorship in this country. Multiple
	// codes may be joined with "|" for an OR filter.
	CountryCode string

	// TopicID keeps works tagged with this topic.
	TopicID string
}

// expr renders the filter in OpenAlex syntax.
func (f WorksFilter) expr() string {
	var parts []string
	if f.PublicationYearAfter > 0 {
		parts = append(parts, fmt.Sprintf("publication_year:>%d", f.PublicationYearAfter))
	}
	if f.InstitutionID != "" {
		parts = append(parts, "authorships.institutions.id:"+f.InstitutionID)
	}
	if f.CountryCode != "" {
		parts = append(parts, "authorships.institutions.country_code:"+f.CountryCode)
	}
	if f.TopicID != "" {
		parts = append(parts, "topics.id:"+f.TopicID)
	}
	return strings.Join(parts, ",")
}

// ListWorks fetches a single page of works matching the filter, up to
// perPage results (the API caps a page at 200).
func (c *Client) ListWorks(ctx context.Context, filter WorksFilter, perPage int) ([]Work, error) {
	page, err := c.fetchWorks(ctx, filter, perPage, "")
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

// PageWorks iterates every work matching the filter using cursor
// pagination, calling fn for each. Iteration stops when fn returns false or
// an error, or when the result set is exhausted.
func (c *Client) PageWorks(ctx context.Context, filter WorksFilter, perPage int, fn func(Work) (bool, error)) error {
	cursor := "*"
	for cursor != "" {
		page, err := c.fetchWorks(ctx, filter, perPage, cursor)
		if err != nil {
			return err
		}
		for _, work := range page.Results {
			keep, err := fn(work)
			if err != nil {
				return err
			}
			if !keep {
				return nil
			}
		}
		if len(page.Results) == 0 {
			return nil
		}
		cursor = page.Meta.NextCursor
	}
	return nil
}

func (c *Client) fetchWorks(ctx context.Context, filter WorksFilter, perPage int, cursor string) (*worksResponse, error) {
	if perPage <= 0 || perPage > 200 {
		perPage = 200
	}

	params := url.Values{
		"per_page": {fmt.Sprintf("%d", perPage)},
	}
	if expr := filter.expr(); expr != "" {
		params.Set("filter", expr)
	}
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	if c.Email != "" {
		params.Set("mailto", c.Email)
	}

	var page worksResponse
	if err := c.getJSON(ctx, apiBase+"/works?"+params.Encode(), &page); err != nil {
		return nil, fmt.Errorf("listing works: %w", err)
	}
	return &page, nil
}

// GetInstitution fetches one institution by its OpenAlex id. Both the full
// URL form ("https://openalex.org/I123") and the bare code ("I123") are
// accepted.
func (c *Client) GetInstitution(ctx context.Context, id string) (Institution, error) {
	code := IDCode(id)
	if code == "" {
		return Institution{}, fmt.Errorf("empty institution id")
	}

	reqURL := apiBase + "/institutions/" + url.PathEscape(code)
	if c.Email != "" {
		reqURL += "?mailto=" + url.QueryEscape(c.Email)
	}

	var inst Institution
	if err := c.getJSON(ctx, reqURL, &inst); err != nil {
		return Institution{}, fmt.Errorf("fetching institution %s: %w", code, err)
	}
	return inst, nil
}

// SearchInstitutions searches institutions by display name, returning up
// to perPage matches.
func (c *Client) SearchInstitutions(ctx context.Context, name string, perPage int) ([]Institution, error) {
	if perPage <= 0 || perPage > 200 {
		perPage = 25
	}

	params := url.Values{
		"search":   {name},
		"per_page": {fmt.Sprintf("%d", perPage)},
	}
	if c.Email != "" {
		params.Set("mailto", c.Email)
	}

	var page institutionsResponse
	if err := c.getJSON(ctx, apiBase+"/institutions?"+params.Encode(), &page); err != nil {
		return nil, fmt.Errorf("searching institutions %q: %w", name, err)
	}
	return page.Results, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	if c.Gate == nil {
		return c.fetchJSON(ctx, reqURL, out)
	}
	return c.Gate.Do(ctx, func() error {
		return c.fetchJSON(ctx, reqURL, out)
	})
}

func (c *Client) fetchJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.Config.UserAgent)

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	return nil
}

// IDCode strips the "https://openalex.org/" prefix from an entity id,
// returning the bare code.
func IDCode(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// OpenAlex API JSON structures.

type worksResponse struct {
	Meta    worksMeta `json:"meta"`
	Results []Work    `json:"results"`
}

type institutionsResponse struct {
	Results []Institution `json:"results"`
}

type worksMeta struct {
	Count      int    `json:"count"`
	PerPage    int    `json:"per_page"`
	NextCursor string `json:"next_cursor"`
}

// Work is one scholarly work with the authorship and topic data the
// generator consumes.
type Work struct {
	ID              string       `json:"id"`
	PublicationYear int          `json:"publication_year"`
	Authorships     []Authorship `json:"authorships"`
	PrimaryTopic    Topic        `json:"primary_topic"`
}

// Authorship ties one author to the institutions credited on a work.
type Authorship struct {
	Author       Author        `json:"author"`
	Institutions []Institution `json:"institutions"`
}

// Author identifies a researcher.
type Author struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Institution is an OpenAlex institution record. Geo is only populated on
// full records from GetInstitution, not on the embedded authorship copies.
type Institution struct {
	ID                      string   `json:"id"`
	DisplayName             string   `json:"display_name"`
	DisplayNameAlternatives []string `json:"display_name_alternatives"`
	CountryCode             string   `json:"country_code"`
	Geo                     Geo      `json:"geo"`
}

// Geo holds an institution's location.
type Geo struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Topic is a work's primary topic with its classification hierarchy.
type Topic struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"display_name"`
	Keywords    []string   `json:"keywords"`
	Domain      TopicLevel `json:"domain"`
	Field       TopicLevel `json:"field"`
	Subfield    TopicLevel `json:"subfield"`
}

// TopicLevel is one level of the topic hierarchy.
type TopicLevel struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
