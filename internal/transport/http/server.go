package http

import (
	"github.com/gin-gonic/gin"

	"scholarforge/internal/bootstrap"
	"scholarforge/internal/transport/http/handler"
	"scholarforge/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(app.Logger), gin.Recovery())
	router.MaxMultipartMemory = 8 << 20

	svc := app.Services
	healthHandler := handler.NewHealthHandler(app)
	authHandler := handler.NewAuthHandler(svc.Auth)
	profileHandler := handler.NewProfileHandler(svc.Profile)
	panelHandler := handler.NewPanelHandler(svc.Panels)
	draftHandler := handler.NewDraftHandler(svc.Drafts)
	generateHandler := handler.NewGenerateHandler(svc.Generator, svc.FieldTrip)
	fileHandler := handler.NewFileHandler(svc.Compression, int64(app.Config.Compressor.MaxUploadMB)<<20)
	fieldTripHandler := handler.NewFieldTripHandler(svc.FieldTrip)
	communityHandler := handler.NewCommunityHandler(svc.Community)

	router.GET("/healthz", healthHandler.Check)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	secured := v1.Group("")
	secured.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	secured.GET("/auth/me", authHandler.Me)

	profile := secured.Group("/profile")
	profile.GET("", profileHandler.Get)
	profile.PUT("", profileHandler.Update)
	profile.PUT("/password", profileHandler.ChangePassword)
	profile.DELETE("", profileHandler.Delete)

	panels := secured.Group("/panels")
	panels.GET("/:panel", panelHandler.Get)
	panels.PUT("/:panel", panelHandler.Save)
	panels.DELETE("/:panel", panelHandler.Reset)

	drafts := secured.Group("/drafts")
	drafts.POST("", draftHandler.Create)
	drafts.GET("", draftHandler.List)
	drafts.GET("/:id", draftHandler.Get)
	drafts.PUT("/:id", draftHandler.Update)
	drafts.DELETE("/:id", draftHandler.Delete)
	drafts.POST("/:id/edit", draftHandler.Edit)
	drafts.POST("/:id/undo", draftHandler.Undo)
	drafts.POST("/:id/redo", draftHandler.Redo)
	drafts.POST("/:id/sections", draftHandler.AddSection)
	drafts.PUT("/:id/sections/:sectionId", draftHandler.UpdateSection)
	drafts.DELETE("/:id/sections/:sectionId", draftHandler.DeleteSection)
	drafts.GET("/:id/export", draftHandler.Export)
	drafts.GET("/:id/links", draftHandler.Links)

	gen := secured.Group("/generate")
	gen.POST("/theses", generateHandler.Theses)
	gen.POST("/outline", generateHandler.Outline)
	gen.POST("/sources", generateHandler.Sources)
	gen.POST("/summarize", generateHandler.Summarize)
	gen.POST("/section", generateHandler.Section)
	gen.POST("/rewrite", generateHandler.Rewrite)
	gen.POST("/report", generateHandler.Report)
	gen.POST("/cv", generateHandler.CV)
	gen.POST("/cover-letter", generateHandler.CoverLetter)
	gen.POST("/presentation", generateHandler.Presentation)
	gen.POST("/slide-image", generateHandler.SlideImage)
	gen.POST("/data-analysis", generateHandler.Data)
	gen.POST("/field-report", generateHandler.FieldReport)
	gen.POST("/specimen", generateHandler.Specimen)
	gen.POST("/assignment", generateHandler.Assignment)

	files := secured.Group("/files")
	files.POST("/compress", fileHandler.Compress)
	files.GET("", fileHandler.List)
	files.GET("/:id", fileHandler.Get)
	files.GET("/:id/download", fileHandler.Download)
	files.DELETE("/:id", fileHandler.Delete)

	trip := secured.Group("/fieldtrip")
	trip.POST("/tables", fieldTripHandler.CreateTable)
	trip.GET("/tables", fieldTripHandler.ListTables)
	trip.GET("/tables/:id", fieldTripHandler.GetTable)
	trip.PUT("/tables/:id", fieldTripHandler.UpdateTable)
	trip.DELETE("/tables/:id", fieldTripHandler.DeleteTable)
	trip.POST("/tables/:id/rows", fieldTripHandler.AddRow)
	trip.DELETE("/tables/:id/rows/:row", fieldTripHandler.RemoveRow)
	trip.POST("/tables/:id/columns", fieldTripHandler.AddColumn)
	trip.PUT("/tables/:id/cells", fieldTripHandler.SetCell)
	trip.POST("/tables/:id/toggle", fieldTripHandler.ToggleCollapsed)
	trip.POST("/observations", fieldTripHandler.AddObservation)
	trip.GET("/observations", fieldTripHandler.ListObservations)
	trip.GET("/observations/:id/photo", fieldTripHandler.Photo)

	community := secured.Group("/community")
	community.GET("/members", communityHandler.Members)
	community.GET("/groups", communityHandler.Groups)
	community.POST("/groups/:id/join", communityHandler.JoinGroup)

	inbox := secured.Group("/inbox")
	inbox.GET("", communityHandler.Inbox)
	inbox.GET("/:peer", communityHandler.Conversation)
	inbox.POST("/:peer", communityHandler.Send)

	notes := secured.Group("/notifications")
	notes.GET("", communityHandler.Notifications)
	notes.POST("/read-all", communityHandler.MarkAllRead)
	notes.POST("/:id/read", communityHandler.MarkRead)

	return router
}
