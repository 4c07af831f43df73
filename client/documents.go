package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/itportal/go-portal-client/internal/errors"
)

// Document is an uploaded file in the review workflow.
type Document struct {
	DocumentID   int    `json:"document_id"`
	TypeID       int    `json:"type_id,omitempty"`
	RequestID    int    `json:"request_id,omitempty"`
	FileName     string `json:"file_name"`
	Status       Status `json:"status,omitempty"`
	RejectReason string `json:"reject_reason,omitempty"`
	UploadedAt   string `json:"uploaded_at,omitempty"`
}

// DocumentType categorizes documents (proposal, final report, ...).
type DocumentType struct {
	TypeID int    `json:"type_id"`
	Name   string `json:"type_name"`
}

// UploadDocument uploads a standalone file.
func (c *Client) UploadDocument(ctx context.Context, filename string, file io.Reader) error {
	return c.postMultipart(ctx, routeDocumentUpload, filename, file, nil)
}

// UploadProjectDocument uploads a file tied to an approved project
// request, under a document type.
func (c *Client) UploadProjectDocument(ctx context.Context, filename string, file io.Reader, typeID, requestID int) error {
	return c.postMultipart(ctx, routeProjectDocUpload, filename, file, map[string]string{
		"type_id":    fmt.Sprintf("%d", typeID),
		"request_id": fmt.Sprintf("%d", requestID),
	})
}

// Documents lists standalone documents.
func (c *Client) Documents(ctx context.Context) ([]Document, error) {
	var docs []Document
	if err := c.getJSON(ctx, routeDocuments, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// AllProjectDocuments lists project documents for review.
func (c *Client) AllProjectDocuments(ctx context.Context) ([]Document, error) {
	var docs []Document
	if err := c.getJSON(ctx, routeProjectDocAll, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteDocument removes a standalone document.
func (c *Client) DeleteDocument(ctx context.Context, documentID int) error {
	path := fmt.Sprintf("%s/%d", routeDocuments, documentID)
	return c.do(ctx, call{method: http.MethodDelete, path: path}, nil)
}

// DeleteProjectDocument removes a project document.
func (c *Client) DeleteProjectDocument(ctx context.Context, documentID int) error {
	path := fmt.Sprintf("%s/%d", routeProjectDocs, documentID)
	return c.do(ctx, call{method: http.MethodDelete, path: path}, nil)
}

// ApproveProjectDocument accepts a submitted document.
func (c *Client) ApproveProjectDocument(ctx context.Context, documentID int) error {
	path := fmt.Sprintf("%s/%d/approve", routeProjectDocs, documentID)
	return c.do(ctx, call{method: http.MethodPost, path: path}, nil)
}

// RejectProjectDocument declines a document with a reason shown to the
// student.
func (c *Client) RejectProjectDocument(ctx context.Context, documentID int, reason string) error {
	path := fmt.Sprintf("%s/%d/reject", routeProjectDocs, documentID)
	return c.sendJSON(ctx, http.MethodPost, path, map[string]string{
		"reason": reason,
	}, nil)
}

// ReturnProjectDocument hands a document back to the student with an
// annotated copy attached.
func (c *Client) ReturnProjectDocument(ctx context.Context, documentID int, filename string, file io.Reader) error {
	path := fmt.Sprintf("%s/%d/return", routeProjectDocs, documentID)
	return c.postMultipart(ctx, path, filename, file, nil)
}

// ResubmitProjectDocument replaces a rejected or returned submission
// with a corrected file.
func (c *Client) ResubmitProjectDocument(ctx context.Context, documentID int, filename string, file io.Reader) error {
	path := fmt.Sprintf("%s/%d", routeProjectDocResubmit, documentID)
	return c.postMultipart(ctx, path, filename, file, nil)
}

// DocumentTypes lists the document categories.
func (c *Client) DocumentTypes(ctx context.Context) ([]DocumentType, error) {
	var types []DocumentType
	if err := c.getJSON(ctx, routeDocumentTypes, nil, &types); err != nil {
		return nil, err
	}
	return types, nil
}

// postMultipart encodes a file plus form fields and sends it with the
// upload timeout. The encoded body is buffered so the 401 replay path
// can reissue it unchanged.
func (c *Client) postMultipart(ctx context.Context, path, filename string, file io.Reader, fields map[string]string) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return errors.Wrapf(err, "[client postMultipart] creating file part")
	}
	if _, err := io.Copy(part, file); err != nil {
		return errors.Wrapf(err, "[client postMultipart] reading %s", filename)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return errors.Wrapf(err, "[client postMultipart] writing field %s", key)
		}
	}
	if err := writer.Close(); err != nil {
		return errors.Wrapf(err, "[client postMultipart] finalizing form")
	}

	return c.do(ctx, call{
		method:      http.MethodPost,
		path:        path,
		body:        buf.Bytes(),
		contentType: writer.FormDataContentType(),
		timeout:     c.uploadTimeout,
	}, nil)
}
