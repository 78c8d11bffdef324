package main

import (
	"fmt"
	"log"
	"os"

	"github.com/faridreza99/servicemanager-sub001/routes"
	"github.com/faridreza99/servicemanager-sub001/storage"
	"github.com/faridreza99/servicemanager-sub001/utils"
	"github.com/faridreza99/servicemanager-sub001/ws"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	// Initialize services
	storage.InitializeDB()
	storage.InitializeMediaStore()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	// Minimal middleware - compression only
	app.Use(iris.Compression)

	// JWT Verifiers. The token pair is issued by the auth service; this
	// process only verifies. The access verifier also reads ?token= so
	// websocket handshakes can authenticate.
	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifier.Extractors = []jwt.TokenExtractor{jwt.FromHeader, jwt.FromQuery}
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	// Health check endpoint
	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	// Routes
	bookings := app.Party("/api/bookings")
	{
		bookings.Post("/", accessTokenVerifierMiddleware, routes.CreateBooking)
		bookings.Get("/{id:uint}", accessTokenVerifierMiddleware, routes.GetBooking)
		bookings.Patch("/{id:uint}/assign", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware, routes.AssignBookingStaff)
	}

	chats := app.Party("/api/chats", accessTokenVerifierMiddleware)
	{
		chats.Get("/{chatID:uint}/messages", routes.GetChatMessages)
		chats.Post("/{chatID:uint}/messages", routes.CreateChatMessage)
		chats.Post("/{chatID:uint}/close", routes.CloseChat)
		chats.Post("/{chatID:uint}/typing", routes.Typing)
		chats.Get("/{chatID:uint}/typing", routes.ListTyping)
	}

	internalChats := app.Party("/api/internal-chats", accessTokenVerifierMiddleware, utils.StaffOrAdminMiddleware)
	{
		internalChats.Post("/", routes.StartInternalChat)
		internalChats.Get("/", routes.ListInternalChats)
		internalChats.Post("/{chatID:uint}/messages", routes.SendInternalMessage)
		internalChats.Post("/{chatID:uint}/read", routes.MarkInternalChatRead)
		internalChats.Post("/{chatID:uint}/typing", routes.InternalTyping)
		internalChats.Get("/{chatID:uint}/typing", routes.ListInternalTyping)
	}

	uploads := app.Party("/api/uploads")
	{
		uploads.Post("/", accessTokenVerifierMiddleware, routes.Upload)
	}

	// Realtime channel: booking chat rooms and personal inbox rooms
	app.Get("/ws", accessTokenVerifierMiddleware, func(ctx iris.Context) {
		ws.ServeChat(ws.MainHub, ctx)
	})
	app.Get("/ws/inbox", accessTokenVerifierMiddleware, func(ctx iris.Context) {
		ws.ServeInbox(ws.MainHub, ctx)
	})

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("🚀 Server starting on %s\n", addr)

	// Start server
	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
