package auth

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type UserData struct {
	ID       int
	Username string
	Email    string
	Password string
}

// Handlers owns the account endpoints that issue the credential the
// websocket gate later verifies.
type Handlers struct {
	DB *sql.DB
}

func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("schema exec failed: %w", err)
	}
	return nil
}

func generateJWT(userData UserData, expirationTime time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"userID":       userData.ID,
		"userEmail":    userData.Email,
		"userUsername": userData.Username,
		"exp":          time.Now().Add(expirationTime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	jwtSecret := os.Getenv("JWT_SECRET")
	return token.SignedString([]byte(jwtSecret))
}

func parseJWT(tokenString string) (jwt.MapClaims, error) {
	jwtSecret := os.Getenv("JWT_SECRET")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}

func hashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.JSON(401, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")

		claims, err := parseJWT(tokenString)
		if err != nil {
			c.JSON(401, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		if userID, ok := claims["userID"].(float64); ok {
			c.Set("userID", int(userID))
		}
		c.Set("userEmail", claims["userEmail"])
		c.Set("userUsername", claims["userUsername"])

		c.Next()
	}
}

func (h *Handlers) HandleRegister(c *gin.Context) {
	var json struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.BindJSON(&json); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request data"})
		return
	}

	hashedPassword, err := hashPassword(json.Password)
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to hash password"})
		return
	}

	query := `INSERT INTO users (username, email, password) VALUES (?, ?, ?)`
	_, err = h.DB.Exec(query, json.Username, json.Email, hashedPassword)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			c.JSON(400, gin.H{"error": "Email is already taken"})
			return
		}
		c.JSON(500, gin.H{"error": "Database error inserting data"})
		return
	}

	c.JSON(201, gin.H{"message": "Successfully registered"})
}

func (h *Handlers) HandleLogin(c *gin.Context) {
	var json struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.BindJSON(&json); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request data"})
		return
	}

	var userData UserData
	query := `SELECT * FROM users WHERE email = ?`
	err := h.DB.QueryRow(query, json.Email).Scan(&userData.ID, &userData.Username, &userData.Email, &userData.Password)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(400, gin.H{"error": "User not found by email"})
		} else {
			c.JSON(500, gin.H{"error": "Error extracting data"})
		}
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(userData.Password), []byte(json.Password))
	if err != nil {
		c.JSON(400, gin.H{"error": "Incorrect password"})
		return
	}

	token, err := generateJWT(userData, time.Hour*672) // 28 days
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to generate JWT token"})
		return
	}

	c.JSON(200, gin.H{
		"auth_token": token,
		"user_id":    userData.ID,
		"username":   userData.Username,
	})
}
