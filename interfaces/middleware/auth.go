package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"youtube-auto-post/domain/dto"
	"youtube-auto-post/domain/model"
	"youtube-auto-post/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// Auth accepts HS256 bearer tokens signed with secretKey and exposes the
// operator as "user_id" on the context.
func Auth(secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res := dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"}

		authorization := ctx.Request.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(authorization, "Bearer ")
		if !ok || raw == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		claims, err := parseClaims(raw, secretKey)
		if err != nil {
			res.ResponseMessage = rejectReason(err)
			logger.GetLogger().WithField("error", err).Debug("rejected admin api token")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		operator := claims.UserName
		if operator == "" {
			operator = claims.Subject
		}
		ctx.Set("user_id", operator)
		ctx.Next()
	}
}

func parseClaims(raw, secretKey string) (*model.OperatorClaims, error) {
	var claims model.OperatorClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	return &claims, nil
}

func rejectReason(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		switch {
		case ve.Errors&jwt.ValidationErrorMalformed != 0:
			return "That's not even a token"
		case ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0:
			return "Timing is everything"
		}
	}
	return fmt.Sprintf("Couldn't handle this token:%v", err)
}
