package main

import (
	"net/http"

	"contract-explorer.backend/internal/interfaces/http/handlers"
	"contract-explorer.backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "contract-explorer-backend"
	serviceVersion = "0.1.0"
)

type routeDeps struct {
	authHandler          *handlers.AuthHandler
	chainHandler         *handlers.ChainHandler
	smartContractHandler *handlers.SmartContractHandler
	contractReadHandler  *handlers.ContractReadHandler
	authMiddleware       gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/token", d.authHandler.Token)
			auth.POST("/refresh", d.authHandler.RefreshToken)
		}

		// Public explorer routes
		v1.GET("/chains", d.chainHandler.ListChains)

		contracts := v1.Group("/contracts")
		{
			contracts.GET("", d.smartContractHandler.ListSmartContracts)
			contracts.GET("/lookup", d.smartContractHandler.GetContractByChainAndAddress)
			contracts.GET("/:id", d.smartContractHandler.GetSmartContract)
			contracts.GET("/:id/read-methods", d.contractReadHandler.ListReadMethods)
			contracts.POST("/:id/read-methods/:method/call", d.contractReadHandler.CallReadMethod)
		}

		// Registry management
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			admin.POST("/chains", middleware.IdempotencyMiddleware(), d.chainHandler.CreateChain)
			admin.DELETE("/chains/:id", d.chainHandler.DeleteChain)

			admin.POST("/contracts", middleware.IdempotencyMiddleware(), d.smartContractHandler.CreateSmartContract)
			admin.PUT("/contracts/:id", d.smartContractHandler.UpdateSmartContract)
			admin.DELETE("/contracts/:id", d.smartContractHandler.DeleteSmartContract)
		}
	}
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		} else {
			c.Header("Access-Control-Allow-Origin", "*")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, "+middleware.IdempotencyHeader+", "+middleware.RequestIDHeader)
		c.Header("Access-Control-Expose-Headers", middleware.RequestIDHeader+", X-Idempotency-Hit")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}
