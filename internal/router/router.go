package router

import (
	"net/http"
	"strings"

	"github.com/esilogis/intervention-service/api"
	"github.com/esilogis/intervention-service/internal/auth"
	"github.com/esilogis/intervention-service/internal/handler"
	"github.com/esilogis/intervention-service/internal/middleware"
	"github.com/esilogis/intervention-service/internal/model"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Deps struct {
	Auth          *auth.Service
	AuthHandler   *handler.AuthHandler
	Interventions *handler.InterventionHandler
	Reference     *handler.ReferenceHandler
}

func New(deps Deps) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", handler.Health)
	r.GET("/ready", handler.Ready)
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/") })
	r.GET("/swagger/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = "/swagger/index.html"
			c.Request.RequestURI = "/swagger/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/openapi.json"))(c)
	})

	r.POST("/api/auth/login", deps.AuthHandler.Login)

	authed := r.Group("/api")
	authed.Use(middleware.Authenticate(deps.Auth))
	admin := middleware.RequireRole(model.RoleAdmin)
	{
		authed.POST("/intervention", deps.Interventions.Create)
		authed.POST("/intervention/planify-intervention", deps.Interventions.Planify)
		authed.GET("/intervention", deps.Interventions.List)
		authed.GET("/intervention/:id", deps.Interventions.Get)
		authed.PUT("/intervention/:id", deps.Interventions.Update)
		authed.POST("/intervention/:id/assign", deps.Interventions.Assign)
		authed.POST("/intervention/:id/status", deps.Interventions.ChangeStatus)

		authed.GET("/location", deps.Reference.ListLocations)
		authed.GET("/location/:id", deps.Reference.GetLocation)
		authed.POST("/location", deps.Reference.CreateLocation)
		authed.PUT("/location/:id", deps.Reference.UpdateLocation)
		authed.DELETE("/location/:id", admin, deps.Reference.DeleteLocation)

		authed.GET("/department", deps.Reference.ListDepartments)
		authed.GET("/department/:id", deps.Reference.GetDepartment)
		authed.POST("/department", deps.Reference.CreateDepartment)
		authed.PUT("/department/:id", deps.Reference.UpdateDepartment)
		authed.DELETE("/department/:id", admin, deps.Reference.DeleteDepartment)

		authed.GET("/equipment", deps.Reference.ListEquipment)
		authed.GET("/equipment/:id", deps.Reference.GetEquipment)
		authed.POST("/equipment", deps.Reference.CreateEquipment)
		authed.PUT("/equipment/:id", deps.Reference.UpdateEquipment)
		authed.DELETE("/equipment/:id", admin, deps.Reference.DeleteEquipment)

		authed.GET("/equipment-type", deps.Reference.ListEquipmentTypes)
		authed.GET("/equipment-type/:id", deps.Reference.GetEquipmentType)
		authed.POST("/equipment-type", admin, deps.Reference.CreateEquipmentType)
		authed.PUT("/equipment-type/:id", admin, deps.Reference.UpdateEquipmentType)
		authed.DELETE("/equipment-type/:id", admin, deps.Reference.DeleteEquipmentType)

		authed.GET("/technician", deps.Reference.ListTechnicians)
		authed.GET("/technician/:id", deps.Reference.GetTechnician)
		authed.POST("/technician", admin, deps.Reference.CreateTechnician)
	}

	return r
}
