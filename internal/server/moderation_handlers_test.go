package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"classwall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerationGates(t *testing.T) {
	_, app := newTestServer(t)
	userToken, user := registerAs(t, app, "pleb")

	// Regular users are locked out of moderation routes entirely.
	status, _ := doJSON(t, app, http.MethodGet, "/api/moderation/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Admins pass the moderator gate but not the owner gate.
	adminToken := loginAs(t, app, "admin01", "123456")
	status, _ = doJSON(t, app, http.MethodGet, "/api/moderation/users", adminToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = doJSON(t, app, http.MethodPost, "/api/admin/users/"+user.ID+"/appoint", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	ownerToken := loginAs(t, app, "headmaster", "owner-secret")
	status, _ = doJSON(t, app, http.MethodPost, "/api/admin/users/"+user.ID+"/appoint", ownerToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestBanUnbanEndpoints(t *testing.T) {
	_, app := newTestServer(t)
	aliceToken, alice := registerAs(t, app, "alice")
	adminToken := loginAs(t, app, "admin01", "123456")

	status, body := doJSON(t, app, http.MethodPost, "/api/moderation/users/"+alice.ID+"/ban", adminToken, map[string]any{
		"reason": "spamming",
	})
	require.Equal(t, http.StatusOK, status)
	banned := decodeUser(t, body["user"])
	assert.Equal(t, models.RoleBanned, banned.Role)

	// The banned account cannot post.
	status, _ = doJSON(t, app, http.MethodPost, "/api/posts", aliceToken, map[string]any{
		"title": "t", "content": "c", "tag": "其他", "visibility": "school",
	})
	assert.Equal(t, http.StatusForbidden, status)

	// Owner is untargetable.
	ownerToken := loginAs(t, app, "headmaster", "owner-secret")
	var owner models.User
	_, meBody := doJSON(t, app, http.MethodGet, "/api/auth/me", ownerToken, nil)
	require.NoError(t, json.Unmarshal(meBody["user"], &owner))
	status, _ = doJSON(t, app, http.MethodPost, "/api/moderation/users/"+owner.ID+"/ban", adminToken, map[string]any{
		"reason": "coup",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, body = doJSON(t, app, http.MethodPost, "/api/moderation/users/"+alice.ID+"/unban", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.RoleUser, decodeUser(t, body["user"]).Role)
}

func TestAdminPostModerationFlow(t *testing.T) {
	_, app := newTestServer(t)
	aliceToken, _ := registerAs(t, app, "alice")
	adminToken := loginAs(t, app, "admin01", "123456")
	ownerToken := loginAs(t, app, "headmaster", "owner-secret")

	status, body := doJSON(t, app, http.MethodPost, "/api/posts", aliceToken, map[string]any{
		"title": "违规帖", "content": "内容", "tag": "八卦", "visibility": "school",
	})
	require.Equal(t, http.StatusCreated, status)
	var post models.Post
	require.NoError(t, json.Unmarshal(body["post"], &post))

	// Admin soft-deletes with a reason.
	status, _ = doJSON(t, app, http.MethodDelete, "/api/moderation/posts/"+post.ID, adminToken, map[string]any{
		"reason": "内容不当",
	})
	require.Equal(t, http.StatusOK, status)

	// The moderation feed still shows it; the public feed does not.
	status, body = doJSON(t, app, http.MethodGet, "/api/moderation/posts", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodePosts(t, body["posts"]), 1)
	status, body = doJSON(t, app, http.MethodGet, "/api/posts/", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decodePosts(t, body["posts"]))

	// Restore is owner-only.
	status, _ = doJSON(t, app, http.MethodPost, "/api/admin/posts/"+post.ID+"/restore", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = doJSON(t, app, http.MethodPost, "/api/admin/posts/"+post.ID+"/restore", ownerToken, nil)
	require.Equal(t, http.StatusOK, status)

	// Hard delete is owner-only and final.
	status, _ = doJSON(t, app, http.MethodDelete, "/api/admin/posts/"+post.ID+"/permanent", ownerToken, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = doJSON(t, app, http.MethodGet, "/api/posts/"+post.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeleteCommentByAdminEndpoint(t *testing.T) {
	_, app := newTestServer(t)
	aliceToken, _ := registerAs(t, app, "alice")
	adminToken := loginAs(t, app, "admin01", "123456")

	status, body := doJSON(t, app, http.MethodPost, "/api/posts", aliceToken, map[string]any{
		"title": "t", "content": "c", "tag": "其他", "visibility": "school",
	})
	require.Equal(t, http.StatusCreated, status)
	var post models.Post
	require.NoError(t, json.Unmarshal(body["post"], &post))

	status, body = doJSON(t, app, http.MethodPost, "/api/posts/"+post.ID+"/comments", aliceToken, map[string]any{
		"content": "评论",
	})
	require.Equal(t, http.StatusCreated, status)
	var comment models.Comment
	require.NoError(t, json.Unmarshal(body["comment"], &comment))

	status, _ = doJSON(t, app, http.MethodDelete, "/api/moderation/comments/"+comment.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, app, http.MethodGet, "/api/posts/"+post.ID+"/comments", "", nil)
	require.Equal(t, http.StatusOK, status)
	var comments []models.Comment
	require.NoError(t, json.Unmarshal(body["comments"], &comments))
	assert.Empty(t, comments)
}

func TestDeleteUserEndpoint(t *testing.T) {
	_, app := newTestServer(t)
	_, alice := registerAs(t, app, "alice")
	adminToken := loginAs(t, app, "admin01", "123456")
	ownerToken := loginAs(t, app, "headmaster", "owner-secret")

	status, _ := doJSON(t, app, http.MethodDelete, "/api/admin/users/"+alice.ID, adminToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = doJSON(t, app, http.MethodDelete, "/api/admin/users/"+alice.ID, ownerToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/users/"+alice.ID, ownerToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
