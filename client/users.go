package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// User is a portal account.
type User struct {
	UserID       int    `json:"user_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// Teacher is a faculty member listed on the public site and selectable
// as a project advisor.
type Teacher struct {
	TeacherID int    `json:"teacher_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Position  string `json:"position,omitempty"`
}

// Users lists all accounts (admin view).
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.getJSON(ctx, routeUsers, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Me returns the calling user's own account.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSON(ctx, routeUsersMe, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser adds an account.
func (c *Client) CreateUser(ctx context.Context, user User) error {
	return c.sendJSON(ctx, http.MethodPost, routeUsers, user, nil)
}

// UpdateUser edits an account.
func (c *Client) UpdateUser(ctx context.Context, user User) error {
	path := fmt.Sprintf("%s/%d", routeUsers, user.UserID)
	return c.sendJSON(ctx, http.MethodPut, path, user, nil)
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, userID int) error {
	path := fmt.Sprintf("%s/%d", routeUsers, userID)
	return c.do(ctx, call{method: http.MethodDelete, path: path}, nil)
}

// UploadProfileImage uploads the calling user's avatar.
func (c *Client) UploadProfileImage(ctx context.Context, filename string, file io.Reader) error {
	return c.postMultipart(ctx, routeUserProfileUpload, filename, file, nil)
}

// Teachers lists faculty members.
func (c *Client) Teachers(ctx context.Context) ([]Teacher, error) {
	var teachers []Teacher
	if err := c.getJSON(ctx, routeTeachers, nil, &teachers); err != nil {
		return nil, err
	}
	return teachers, nil
}

// CreateTeacher adds a faculty member.
func (c *Client) CreateTeacher(ctx context.Context, teacher Teacher) error {
	return c.sendJSON(ctx, http.MethodPost, routeTeachers, teacher, nil)
}

// UpdateTeacher edits a faculty member.
func (c *Client) UpdateTeacher(ctx context.Context, teacher Teacher) error {
	path := fmt.Sprintf("%s/%d", routeTeachers, teacher.TeacherID)
	return c.sendJSON(ctx, http.MethodPut, path, teacher, nil)
}

// DeleteTeacher removes a faculty member.
func (c *Client) DeleteTeacher(ctx context.Context, teacherID int) error {
	path := fmt.Sprintf("%s/%d", routeTeachers, teacherID)
	return c.do(ctx, call{method: http.MethodDelete, path: path}, nil)
}
