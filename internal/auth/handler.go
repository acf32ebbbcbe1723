package auth

import (
	"strings"

	"cokhi-backend/internal/config"
	"cokhi-backend/internal/database"
	"cokhi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type RegisterAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // "admin" hoặc "staff"
}

// POST /api/auth/register-admin
// Chỉ dùng để khởi tạo tài khoản admin đầu tiên
func RegisterAdminHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dữ liệu không hợp lệ")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		if body.Email == "" || body.Password == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Tên, email và mật khẩu là bắt buộc")
		}

		// Đã có admin thì chặn tạo thêm qua đường công khai
		var count int64
		database.DB.Model(&models.User{}).
			Where("role = ?", models.RoleAdmin).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "Đã tồn tại tài khoản admin")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không mã hóa được mật khẩu")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không tạo được tài khoản")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		})
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dữ liệu không hợp lệ")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		var user models.User
		if err := database.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Email hoặc mật khẩu không đúng")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Email hoặc mật khẩu không đúng")
		}

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không tạo được token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":    user.ID,
				"name":  user.Name,
				"email": user.Email,
				"role":  user.Role,
			},
		})
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userIDVal := c.Locals(CtxUserIDKey)
		userID, ok := userIDVal.(uint)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Không đọc được thông tin người dùng")
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy người dùng")
		}

		return c.JSON(fiber.Map{
			"user_id": user.ID,
			"name":    user.Name,
			"email":   user.Email,
			"role":    user.Role,
		})
	}
}

// POST /api/admin/users
// Admin tạo tài khoản cho nhân viên
func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dữ liệu không hợp lệ")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		if body.Email == "" || body.Password == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Tên, email và mật khẩu là bắt buộc")
		}

		role := models.UserRole(body.Role)
		if role != models.RoleAdmin && role != models.RoleStaff {
			return fiber.NewError(fiber.StatusBadRequest, "role phải là 'admin' hoặc 'staff'")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không mã hóa được mật khẩu")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         role,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Email đã được sử dụng")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		})
	}
}
