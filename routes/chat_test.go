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

// buildChatTestApp creates a minimal Iris app with the chat routes and JWT verifier
func buildChatTestApp() *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	chats := app.Party("/api/chats", accessTokenVerifierMiddleware)
	{
		chats.Get("/{chatID:uint}/messages", GetChatMessages)
		chats.Post("/{chatID:uint}/messages", CreateChatMessage)
		chats.Post("/{chatID:uint}/close", CloseChat)
	}
	if err := app.Build(); err != nil {
		panic(err)
	}
	return app
}

// signTestToken returns a signed JWT with the given actor id and role
func signTestToken(t *testing.T, id uint, role string) string {
	t.Helper()
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 0)
	token, err := signer.Sign(utils.AccessToken{ID: id, Role: role})
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return string(token)
}

func postMessage(t *testing.T, app *iris.Application, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chats/1/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func TestCreateMessageRequiresToken(t *testing.T) {
	app := buildChatTestApp()
	resp := postMessage(t, app, "", `{"content":"hi"}`)
	if resp.Code == http.StatusOK {
		t.Fatalf("expected non-200 without token, got %d", resp.Code)
	}
}

func TestCreateMessageCapabilityChecks(t *testing.T) {
	app := buildChatTestApp()

	// Customer attempting a private note -> 403 before any DB work
	resp := postMessage(t, app, signTestToken(t, 3, "customer"), `{"content":"note","isPrivate":true}`)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer private message, got %d", resp.Code)
	}

	// Customer attempting a quotation -> 403
	resp2 := postMessage(t, app, signTestToken(t, 3, "customer"), `{"isQuotation":true,"quotationAmount":500}`)
	if resp2.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer quotation, got %d", resp2.Code)
	}
}

func TestCreateMessageValidation(t *testing.T) {
	app := buildChatTestApp()
	token := signTestToken(t, 1, "admin")

	cases := []struct {
		name string
		body string
	}{
		{"empty payload", `{"content":""}`},
		{"whitespace only", `{"content":"   "}`},
		{"quotation without amount", `{"isQuotation":true,"content":"parts+labor"}`},
		{"negative quotation amount", `{"isQuotation":true,"quotationAmount":-1}`},
		{"amount on non-quotation", `{"content":"hi","quotationAmount":500}`},
		{"attachment url without type", `{"attachmentURL":"https://cdn.example/x.ogg"}`},
		{"attachment type without url", `{"attachmentType":"audio/ogg"}`},
	}
	for _, c := range cases {
		resp := postMessage(t, app, token, c.body)
		if resp.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", c.name, resp.Code)
		}
	}
}

func TestValidateMessagePayload(t *testing.T) {
	amount := int64(500)
	negative := int64(-1)

	valid := []createMessageInput{
		{Content: "hello"},
		{Content: "parts+labor", IsQuotation: true, QuotationAmount: &amount},
		{IsQuotation: true, QuotationAmount: &amount},
		{AttachmentURL: "https://cdn.example/v.m4a", AttachmentType: "audio/m4a"},
		{Content: "see photo", AttachmentURL: "https://cdn.example/p.jpg", AttachmentType: "image/jpeg"},
	}
	for i, in := range valid {
		if reason := validateMessagePayload(&in); reason != "" {
			t.Errorf("valid case %d rejected: %s", i, reason)
		}
	}

	invalid := []createMessageInput{
		{},
		{Content: "  "},
		{IsQuotation: true},
		{IsQuotation: true, QuotationAmount: &negative},
		{Content: "x", QuotationAmount: &amount},
		{AttachmentURL: "https://cdn.example/x"},
		{AttachmentType: "image/png"},
	}
	for i, in := range invalid {
		if validateMessagePayload(&in) == "" {
			t.Errorf("invalid case %d accepted", i)
		}
	}

	// zero is a legal quotation amount (free estimate)
	zero := int64(0)
	free := createMessageInput{IsQuotation: true, QuotationAmount: &zero}
	if reason := validateMessagePayload(&free); reason != "" {
		t.Errorf("zero-amount quotation rejected: %s", reason)
	}
}
