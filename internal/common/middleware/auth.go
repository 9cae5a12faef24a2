package middleware

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// ============================================================
// Bearer Tokens
// ============================================================

// UserKey - ключ Locals с id пользователя запроса.
const UserKey = "userID"

type Tokens struct {
	mu     sync.Mutex
	tokens map[string]string // token -> userID
}

func NewTokens() *Tokens {
	return &Tokens{
		tokens: make(map[string]string),
	}
}

// ParseTokens разбирает "token:user,token:user". Записи без пользователя
// отбрасываются.
func ParseTokens(list string) *Tokens {
	t := NewTokens()
	for _, entry := range strings.Split(list, ",") {
		token, user, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok || token == "" || user == "" {
			continue
		}
		t.Add(token, user)
	}
	return t
}

func (t *Tokens) Add(token, userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tokens[token] = userID
}

// Issue выдаёт новый токен для userID.
func (t *Tokens) Issue(userID string) string {
	token := uuid.NewString()
	t.Add(token, userID)
	return token
}

func (t *Tokens) Resolve(token string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	userID, ok := t.tokens[token]
	return userID, ok
}

func (t *Tokens) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tokens)
}

// Bearer пропускает только запросы с известным токеном и кладёт userID в Locals.
func Bearer(tokens *Tokens) fiber.Handler {
	return func(c fiber.Ctx) error {
		auth := c.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		userID, ok := tokens.Resolve(strings.TrimPrefix(auth, "Bearer "))
		if !ok {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		c.Locals(UserKey, userID)
		return c.Next()
	}
}

// UserID возвращает id, сохранённый Bearer, или "".
func UserID(c fiber.Ctx) string {
	id, _ := c.Locals(UserKey).(string)
	return id
}
