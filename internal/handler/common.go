package handler

import (
	"net/http"
	"strconv"

	"go-event-registration/internal/model"

	"github.com/gin-gonic/gin"
)

const contextUserKey = "currentUser"

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

func BindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

// IdentityMiddleware 從上游閘道塞的 header 還原操作者身分。
// 身分驗證本體（JWT 驗簽等）在閘道完成，這裡只做資料還原。
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.GetHeader("X-User-ID")
		if idStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing identity"})
			return
		}

		id, err := strconv.Atoi(idStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid identity"})
			return
		}

		role := model.UserRole(c.GetHeader("X-User-Role"))
		if !role.IsValid() {
			role = model.UserRoleParticipant
		}

		c.Set(contextUserKey, &model.User{ID: id, Role: role})
		c.Next()
	}
}

// RequireAdmin 擋下非管理者的請求
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser 取出 middleware 放進 context 的操作者
func CurrentUser(c *gin.Context) *model.User {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	user, ok := value.(*model.User)
	if !ok {
		return nil
	}
	return user
}
