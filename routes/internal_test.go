package routes

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/faridreza99/servicemanager-sub001/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func buildInternalTestApp() *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	internal := app.Party("/api/internal-chats", accessTokenVerifierMiddleware, utils.StaffOrAdminMiddleware)
	{
		internal.Post("/", StartInternalChat)
	}
	if err := app.Build(); err != nil {
		panic(err)
	}
	return app
}

func TestInternalChatsStaffOnly(t *testing.T) {
	app := buildInternalTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/internal-chats", strings.NewReader(`{"participantID":2}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, 3, "customer"))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer on internal chats, got %d", resp.Code)
	}
}

func TestStartInternalChatRejectsSelf(t *testing.T) {
	app := buildInternalTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/internal-chats", strings.NewReader(`{"participantID":5}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, 5, "staff"))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for self chat, got %d", resp.Code)
	}
}

func TestNormalizePair(t *testing.T) {
	lo, hi := normalizePair(9, 4)
	if lo != 4 || hi != 9 {
		t.Fatalf("normalizePair(9,4) = (%d,%d), want (4,9)", lo, hi)
	}
	lo2, hi2 := normalizePair(4, 9)
	if lo2 != lo || hi2 != hi {
		t.Fatal("pair normalization must be order independent")
	}
}

func TestValidateInternalMessagePayload(t *testing.T) {
	valid := []sendInternalMessageInput{
		{Content: "hello"},
		{AttachmentURL: "https://cdn.example/v.m4a", AttachmentType: "audio/m4a"},
		{Content: "listen", AttachmentURL: "https://cdn.example/v.m4a", AttachmentType: "audio/m4a"},
	}
	for i, in := range valid {
		if reason := validateInternalMessagePayload(&in); reason != "" {
			t.Errorf("valid case %d rejected: %s", i, reason)
		}
	}

	invalid := []sendInternalMessageInput{
		{},
		{Content: "   "},
		{AttachmentURL: "https://cdn.example/x"},
		{AttachmentType: "image/png"},
	}
	for i, in := range invalid {
		if validateInternalMessagePayload(&in) == "" {
			t.Errorf("invalid case %d accepted", i)
		}
	}
}
