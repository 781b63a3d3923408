package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/huddlechat/huddle/auth"
	"github.com/huddlechat/huddle/config"
	"github.com/huddlechat/huddle/engine"
	"github.com/huddlechat/huddle/persistence"
	"github.com/huddlechat/huddle/storage"
	"github.com/huddlechat/huddle/types"
	"github.com/huddlechat/huddle/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.PersistenceConfig.DataDir = t.TempDir()
	cfg.UploadConfig.Dir = t.TempDir()
	cfg.UploadConfig.BaseURL = "/uploads"

	backend, err := persistence.NewFileBackend(cfg)
	require.NoError(t, err)
	users, err := persistence.LoadUsers(backend)
	require.NoError(t, err)
	groups, err := persistence.LoadGroups(backend)
	require.NoError(t, err)
	channels, err := persistence.NewChannelLog(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { channels.Close() })

	relay := ws.NewRelay(channels, nil)
	go relay.Run()

	blobs, err := storage.NewDiskStorage(cfg)
	require.NoError(t, err)

	server := NewServer(engine.New(users, groups, channels, nil), relay, blobs, auth.NewStoreAuthenticator(users), nil)
	ts := httptest.NewServer(server.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	decoded := map[string]interface{}{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func TestMembershipFlow(t *testing.T) {
	ts := newTestServer(t)

	status, _ := doJSON(t, ts, http.MethodPost, "/api/users", map[string]string{"id": "u1", "username": "alice", "password": "pw"})
	require.Equal(t, http.StatusCreated, status)
	status, _ = doJSON(t, ts, http.MethodPost, "/api/users", map[string]string{"id": "u2", "username": "bob"})
	require.Equal(t, http.StatusCreated, status)

	status, _ = doJSON(t, ts, http.MethodPost, "/api/groups", map[string]string{"id": "g1", "groupname": "first", "adminId": "u1"})
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, ts, http.MethodPut, "/api/groups/g1/register-interest", map[string]string{"userId": "u2"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Interest registered successfully", body["message"])

	status, body = doJSON(t, ts, http.MethodPut, "/api/groups/g1/approve", map[string]string{"userId": "u2"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{"u2"}, body["users"])
	assert.Empty(t, body["pendingUsers"])

	status, body = doJSON(t, ts, http.MethodPost, "/api/groups/g1/channels", map[string]interface{}{"name": "general", "channelUsers": []string{"u1"}})
	require.Equal(t, http.StatusCreated, status)
	newChannel, ok := body["newChannel"].(map[string]interface{})
	require.True(t, ok)
	channelId, _ := newChannel["id"].(string)
	require.NotEmpty(t, channelId)

	status, body = doJSON(t, ts, http.MethodPut, "/api/channels/"+channelId+"/requestToJoin", map[string]string{"userId": "u2"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Request to join channel sent", body["message"])

	status, body = doJSON(t, ts, http.MethodPut, "/api/channels/"+channelId+"/approveUser", map[string]string{"userId": "u2"})
	require.Equal(t, http.StatusOK, status)
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, user["channels"], channelId)

	resp, err := ts.Client().Get(ts.URL + "/api/channels/" + channelId + "/messages")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	messages := []interface{}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&messages))
	assert.Empty(t, messages)
}

func TestErrorTaxonomy(t *testing.T) {
	ts := newTestServer(t)
	status, _ := doJSON(t, ts, http.MethodPost, "/api/users", map[string]string{"id": "u1", "username": "alice"})
	require.Equal(t, http.StatusCreated, status)
	status, _ = doJSON(t, ts, http.MethodPost, "/api/groups", map[string]string{"id": "g1", "groupname": "first", "adminId": "u1"})
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, ts, http.MethodGet, "/api/users/nobody", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", body["message"])

	status, body = doJSON(t, ts, http.MethodPut, "/api/channels/not-a-uuid/requestToJoin", map[string]string{"userId": "u1"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid channel ID format", body["message"])

	status, body = doJSON(t, ts, http.MethodPut, "/api/channels/"+uuid.New().String()+"/requestToJoin", map[string]string{"userId": "u1"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Channel not found", body["message"])

	status, body = doJSON(t, ts, http.MethodDelete, "/api/groups/g1?adminId=u2", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Forbidden: You don't have permission to delete this group.", body["message"])

	status, _ = doJSON(t, ts, http.MethodPost, "/api/users", map[string]string{"id": "u3"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAuth(t *testing.T) {
	ts := newTestServer(t)
	status, _ := doJSON(t, ts, http.MethodPost, "/api/users", map[string]string{"id": "u1", "username": "alice", "password": "secret"})
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, ts, http.MethodPost, "/api/auth", map[string]string{"username": "alice", "password": "secret"})
	require.Equal(t, http.StatusOK, status)
	userInfo, ok := body["userInfo"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "u1", userInfo["id"])
	assert.NotContains(t, userInfo, "password")

	status, body = doJSON(t, ts, http.MethodPost, "/api/auth", map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", body["message"])

	status, body = doJSON(t, ts, http.MethodPost, "/api/auth", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Missing username or password", body["message"])
}

func TestUploadImage(t *testing.T) {
	ts := newTestServer(t)

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("image", "cat.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("not really a png"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp, err := ts.Client().Post(ts.URL+"/api/upload-image", writer.FormDataContentType(), buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Image uploaded successfully", body["message"])
	imageUrl, _ := body["imageUrl"].(string)
	assert.True(t, strings.HasPrefix(imageUrl, "/uploads/image_"))
	assert.True(t, strings.HasSuffix(imageUrl, ".png"))
}

func TestWebsocketChat(t *testing.T) {
	ts := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/chat?username=alice"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	join, err := types.NewWireMessage(types.WireEventJoinChannel, types.JoinLeave{ChannelId: "c1", Username: "alice"})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, join))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	frame := &types.WebsocketMessage{}
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, frame))
	require.Equal(t, types.WireEventSystemMessage, frame.Event)
	notice := &types.SystemMessage{}
	require.NoError(t, json.Unmarshal(frame.Data, notice))
	assert.Equal(t, "alice has joined the chat", notice.Message)

	chat, err := types.NewWireMessage(types.WireEventChatMessage, map[string]string{
		"channelId": "c1",
		"userId":    "u1",
		"message":   "hello",
	})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, chat))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, frame))
	require.Equal(t, types.WireEventChatMessage, frame.Event)
	echoed := &types.ChatMessage{}
	require.NoError(t, json.Unmarshal(frame.Data, echoed))
	assert.Equal(t, "hello", echoed.Message)
	assert.NotEmpty(t, echoed.Id)
}
