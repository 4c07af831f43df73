package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Status is the shared workflow vocabulary for project requests,
// documents and releases. The server owns the transitions; these values
// are mirrored state only.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusReturned Status = "returned"
	StatusComplete Status = "complete"
)

// ProjectRequest is a student's submitted project proposal.
type ProjectRequest struct {
	RequestID      int    `json:"request_id"`
	ProjectID      int    `json:"project_id,omitempty"`
	ProjectNameTh  string `json:"project_name_th"`
	ProjectNameEng string `json:"project_name_eng"`
	Status         Status `json:"status"`
	AdvisorName    string `json:"advisor_name,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// CreateProjectRequestInput carries a new proposal. Field names follow
// the portal's wire shape, mixed casing included.
type CreateProjectRequestInput struct {
	ProjectName    string   `json:"project_name"`
	ProjectNameEng string   `json:"project_name_eng"`
	ProjectType    int      `json:"project_type"`
	GroupMembers   []string `json:"groupMembers"`
	AdvisorID      int      `json:"advisorId"`
	StudentID      int      `json:"studentId"`
}

// ProjectRequestList is the {data: [...]} envelope the request-status
// endpoints answer with.
type ProjectRequestList struct {
	Data []ProjectRequest `json:"data"`
}

// Project is a listed (public or released) project.
type Project struct {
	ProjectID      int    `json:"project_id"`
	ProjectNameTh  string `json:"project_name_th"`
	ProjectNameEng string `json:"project_name_eng"`
	ProjectType    int    `json:"project_type,omitempty"`
	Status         Status `json:"status,omitempty"`
}

// ProjectType is a category a project can be filed under.
type ProjectType struct {
	ProjectTypeID int    `json:"project_type_id"`
	Name          string `json:"project_type_name"`
}

// OldProject is an archived project from earlier years, kept for
// students to browse.
type OldProject struct {
	OldID          int    `json:"old_id"`
	ProjectNameTh  string `json:"old_project_name_th"`
	ProjectNameEng string `json:"old_project_name_eng"`
	ProjectType    string `json:"project_type"`
	DocumentYear   string `json:"document_year"`
	FilePath       string `json:"file_path,omitempty"`
}

// UpdateProjectStatusInput moves a request through the approval workflow.
// The endpoint takes camelCase here, unlike the snake_case responses.
type UpdateProjectStatusInput struct {
	RequestID int    `json:"requestId"`
	Status    Status `json:"status"`
}

// CreateProjectRequest submits a new proposal.
func (c *Client) CreateProjectRequest(ctx context.Context, in CreateProjectRequestInput) error {
	return c.sendJSON(ctx, http.MethodPost, routeProjectRequestCreate, in, nil)
}

// ProjectRequestStatus lists a student's requests with their statuses.
func (c *Client) ProjectRequestStatus(ctx context.Context, studentID int) ([]ProjectRequest, error) {
	query := url.Values{"studentId": []string{strconv.Itoa(studentID)}}

	var list ProjectRequestList
	if err := c.getJSON(ctx, routeProjectRequestStatus, query, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// AllProjectRequests lists every request, for teacher/admin review.
func (c *Client) AllProjectRequests(ctx context.Context) ([]ProjectRequest, error) {
	var list ProjectRequestList
	if err := c.getJSON(ctx, routeProjectRequestAll, nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// UpdateProjectStatus approves or rejects a request.
func (c *Client) UpdateProjectStatus(ctx context.Context, in UpdateProjectStatusInput) error {
	return c.sendJSON(ctx, http.MethodPut, routeProjectUpdateStatus, in, nil)
}

// DeleteProjectRequest withdraws a pending request.
func (c *Client) DeleteProjectRequest(ctx context.Context, requestID int) error {
	path := fmt.Sprintf("%s/%d", routeProjectRequestDelete, requestID)
	return c.do(ctx, call{method: http.MethodDelete, path: path}, nil)
}

// Projects lists projects.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.getJSON(ctx, routeProjects, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// ProjectTypes lists the available project categories.
func (c *Client) ProjectTypes(ctx context.Context) ([]ProjectType, error) {
	var types []ProjectType
	if err := c.getJSON(ctx, routeProjectTypes, nil, &types); err != nil {
		return nil, err
	}
	return types, nil
}

// CreateProjectType adds a category.
func (c *Client) CreateProjectType(ctx context.Context, name string) error {
	return c.sendJSON(ctx, http.MethodPost, routeProjectTypes, map[string]string{
		"project_type_name": name,
	}, nil)
}

// UpdateProjectType renames a category.
func (c *Client) UpdateProjectType(ctx context.Context, typeID int, name string) error {
	path := fmt.Sprintf("%s/%d", routeProjectTypes, typeID)
	return c.sendJSON(ctx, http.MethodPut, path, map[string]string{
		"project_type_name": name,
	}, nil)
}

// DeleteProjectType removes a category.
func (c *Client) DeleteProjectType(ctx context.Context, typeID int) error {
	path := fmt.Sprintf("%s/%d", routeProjectTypes, typeID)
	return c.do(ctx, call{method: http.MethodDelete, path: path}, nil)
}

// OldProjects lists the archived-project catalog.
func (c *Client) OldProjects(ctx context.Context) ([]OldProject, error) {
	var projects []OldProject
	if err := c.getJSON(ctx, routeOldProjects, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// AddOldProject archives a past project together with its document.
func (c *Client) AddOldProject(ctx context.Context, in OldProject, filename string, file io.Reader) error {
	return c.postMultipart(ctx, routeOldProjects, filename, file, map[string]string{
		"old_project_name_th":  in.ProjectNameTh,
		"old_project_name_eng": in.ProjectNameEng,
		"project_type":         in.ProjectType,
		"document_year":        in.DocumentYear,
	})
}

// PendingReleases lists projects awaiting release approval.
func (c *Client) PendingReleases(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.getJSON(ctx, routeReleasePending, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// CheckReleaseDocuments reports whether a project's required documents
// are all approved.
func (c *Client) CheckReleaseDocuments(ctx context.Context, projectID int) (bool, error) {
	path := fmt.Sprintf("%s/%d", routeReleaseCheckDocuments, projectID)

	var result struct {
		Complete bool `json:"complete"`
	}
	if err := c.getJSON(ctx, path, nil, &result); err != nil {
		return false, err
	}
	return result.Complete, nil
}

// UpdateReleaseStatus releases a project whose documents are complete.
// The server owns the transition; the request carries no body.
func (c *Client) UpdateReleaseStatus(ctx context.Context, projectID int) error {
	path := fmt.Sprintf("%s/%d", routeReleaseUpdateStatus, projectID)
	return c.do(ctx, call{method: http.MethodPut, path: path}, nil)
}

// CompleteReport is the release page's pointer to a project's final
// report file.
type CompleteReport struct {
	Success      bool   `json:"success"`
	DocumentPath string `json:"documentPath"`
}

// ProjectCompleteReport locates the final report of a released project.
func (c *Client) ProjectCompleteReport(ctx context.Context, projectID int) (*CompleteReport, error) {
	path := fmt.Sprintf("%s/%d", routeReleaseCompleteReport, projectID)

	var report CompleteReport
	if err := c.getJSON(ctx, path, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
