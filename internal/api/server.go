package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/suckingout/poker-nights-api/docs"
	v1 "github.com/suckingout/poker-nights-api/internal/api/handler/v1"
	"github.com/suckingout/poker-nights-api/internal/api/middleware"
	"github.com/suckingout/poker-nights-api/internal/config"
	"github.com/suckingout/poker-nights-api/internal/mailer"
	"github.com/suckingout/poker-nights-api/internal/repository"
	"github.com/suckingout/poker-nights-api/internal/repository/dao"
	"github.com/suckingout/poker-nights-api/internal/service"
	"github.com/suckingout/poker-nights-api/internal/watch"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
	Hub    *watch.Hub
}

// NewServer wires DAOs into repositories, repositories into services and
// services into handlers, then mounts everything on one gin engine. cache
// may be nil when Redis is not configured.
func NewServer(conf *config.AppConfig, db *gorm.DB, cache *redis.Client) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
		Hub:    watch.NewHub(),
	}

	s.MountMiddlewares()

	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	groupRepo := repository.NewGroupRepository(dao.NewGroupDAO(db))
	mail := mailer.NewClient(conf.Email)

	eventSvc := service.NewEventService(eventRepo, userRepo, mail, s.Hub, conf.API.WebBaseURL)
	groupSvc := service.NewGroupService(groupRepo, userRepo, mail, s.Hub, conf.API.WebBaseURL)
	statsSvc := service.NewStatsService(eventRepo, groupRepo, userRepo, cache)

	authHandler := v1.NewAuthHandler(conf.API, service.NewAuthService(userRepo))
	userHandler := v1.NewUserHandler(service.NewUserService(userRepo, groupRepo), statsSvc)
	eventHandler := v1.NewEventHandler(eventSvc)
	tableHandler := v1.NewTableHandler(service.NewTableService(eventRepo, s.Hub))
	groupHandler := v1.NewGroupHandler(groupSvc, statsSvc)
	watchHandler := v1.NewWatchHandler(s.Hub, eventSvc, groupSvc)

	s.MountHandlers(authHandler, userHandler, eventHandler, tableHandler, groupHandler, watchHandler)

	return s
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	eventHandler *v1.EventHandler,
	tableHandler *v1.TableHandler,
	groupHandler *v1.GroupHandler,
	watchHandler *v1.WatchHandler,
) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	verifyJWT := middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT()

	users := s.Router.Group(basePath, verifyJWT)
	{
		users.GET("/users/:userID", userHandler.HandleGetUser)
		users.PUT("/me", userHandler.HandleUpdateMyProfile)
		users.GET("/me/stats", userHandler.HandleGetMyStats)
	}

	events := s.Router.Group(basePath, verifyJWT)
	{
		events.POST("/events", eventHandler.HandleCreateEvent)
		events.GET("/events", eventHandler.HandleGetEvents)
		events.GET("/events/:eventID", eventHandler.HandleGetEvent)
		events.DELETE("/events/:eventID", eventHandler.HandleCancelEvent)
		events.GET("/events/:eventID/participants", eventHandler.HandleGetParticipants)
		events.POST("/events/:eventID/join", eventHandler.HandleJoinEvent)
		events.POST("/events/:eventID/leave", eventHandler.HandleLeaveEvent)
		events.PUT("/events/:eventID/winners", eventHandler.HandleSetWinners)
		events.POST("/events/:eventID/invites", eventHandler.HandleInvitePlayer)
		events.POST("/events/:eventID/invites/remove", eventHandler.HandleRemoveInvite)

		events.POST("/events/:eventID/tables", tableHandler.HandleAddTable)
		events.DELETE("/events/:eventID/tables/:tableID", tableHandler.HandleRemoveTable)
		events.POST("/events/:eventID/tables/:tableID/reserve", tableHandler.HandleReserveSeat)
		events.POST("/events/:eventID/tables/:tableID/release", tableHandler.HandleReleaseSeat)

		events.GET("/events/:eventID/watch", watchHandler.HandleWatchEvent)
	}

	groups := s.Router.Group(basePath, verifyJWT)
	{
		groups.POST("/groups", groupHandler.HandleCreateGroup)
		groups.GET("/groups", groupHandler.HandleGetGroups)
		groups.GET("/groups/:groupID", groupHandler.HandleGetGroup)
		groups.GET("/groups/:groupID/members", groupHandler.HandleGetMembers)
		groups.GET("/groups/:groupID/leaderboard", groupHandler.HandleGetLeaderboard)
		groups.POST("/groups/:groupID/invites", groupHandler.HandleInviteMember)
		groups.POST("/groups/:groupID/invites/remove", groupHandler.HandleCancelInvite)
		groups.POST("/groups/:groupID/accept", groupHandler.HandleAcceptInvite)
		groups.POST("/groups/:groupID/members/remove", groupHandler.HandleRemoveMember)

		groups.GET("/groups/:groupID/watch", watchHandler.HandleWatchGroup)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Poker Nights API"
	docs.SwaggerInfo.Description = "Scheduling, seating and stats for home poker games."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
