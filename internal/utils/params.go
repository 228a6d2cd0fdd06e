package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func GetAlertID(ctx *gin.Context) (uint64, error) {
	alertIDStr := ctx.Param("alert_id")

	if alertIDStr == "" {
		return 0, errors.New("Alert ID not found")
	}

	alertID, err := strconv.ParseUint(alertIDStr, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid Alert ID")
	}

	return alertID, nil
}

func GetEmailID(ctx *gin.Context) (uint64, error) {
	emailIDStr := ctx.Param("email_id")

	if emailIDStr == "" {
		return 0, errors.New("Email ID not found")
	}

	emailID, err := strconv.ParseUint(emailIDStr, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid Email ID")
	}

	return emailID, nil
}
