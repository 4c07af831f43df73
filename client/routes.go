package client

// Portal API routes. Paths are relative to the configured base URL.
const (
	routeLogin          = "/auth/login"
	routeLogout         = "/auth/logout"
	routeCheckSession   = "/auth/check-session"
	routeRefreshSession = "/auth/refresh-session"
	routeRegister       = "/auth/register"
	routeUpdateSession  = "/auth/update-session"

	routeProjectRequestCreate = "/project-requests/create"
	routeProjectRequestStatus = "/project-requests/status"
	routeProjectRequestAll    = "/project-requests/all"
	routeProjectRequestDelete = "/project-requests/delete"
	routeProjectUpdateStatus  = "/projects/update-status"
	routeProjects             = "/projects"
	routeProjectTypes         = "/project-types"

	routeReleasePending        = "/project-release/pending"
	routeReleaseCheckDocuments = "/project-release/check-documents"
	routeReleaseUpdateStatus   = "/project-release/update-status"
	routeReleaseCompleteReport = "/project-release/complete-report"

	routeDocumentUpload     = "/document/upload"
	routeDocuments          = "/document"
	routeProjectDocUpload   = "/project-documents/upload"
	routeProjectDocAll      = "/project-documents/all"
	routeProjectDocs        = "/project-documents"
	routeProjectDocResubmit = "/project-documents/resubmit"
	routeDocumentTypes      = "/document-types/types"
	routeTeachers           = "/teacher"
	routeUsers              = "/users"
	routeUsersMe            = "/users/me"
	routeUserProfileUpload  = "/users/upload-profile-image"
	routeOldProjects        = "/old-projects"
)
