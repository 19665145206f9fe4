package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/esilogis/intervention-service/internal/errs"
	"github.com/gin-gonic/gin"
)

// envelope is the JSON shape of every API response.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

func respondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Message: message, Data: data})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope{Success: false, Message: message})
}

var notFoundSentinels = []error{
	errs.ErrInterventionNotFound,
	errs.ErrLocationNotFound,
	errs.ErrEquipmentNotFound,
	errs.ErrEquipmentTypeNotFound,
	errs.ErrDepartmentNotFound,
	errs.ErrPersonNotFound,
	errs.ErrAccountNotFound,
}

// respondError maps domain errors to status codes: validation 400, not-found
// 404, illegal transition 409, everything else 500.
func respondError(c *gin.Context, err error) {
	if errs.IsValidation(err) {
		c.JSON(http.StatusBadRequest, envelope{Success: false, Message: err.Error()})
		return
	}
	if errs.IsTransition(err) {
		c.JSON(http.StatusConflict, envelope{Success: false, Message: err.Error()})
		return
	}
	for _, sentinel := range notFoundSentinels {
		if errors.Is(err, sentinel) {
			c.JSON(http.StatusNotFound, envelope{Success: false, Message: err.Error()})
			return
		}
	}
	log.Printf("handler: unhandled error: %v", err)
	c.JSON(http.StatusInternalServerError, envelope{Success: false, Message: "internal error"})
}
