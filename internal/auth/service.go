package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/librarium/internal/model"
	"github.com/hitoshi/librarium/internal/repository"
	"github.com/hitoshi/librarium/internal/security"
)

// minPasswordLength は登録時に要求するパスワードの最小長。
const minPasswordLength = 6

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	BcryptCost int
}

// Service は登録・ログインのビジネスロジックを提供する。
// パスワードはソルト付き適応型ハッシュ（bcrypt）で保存し、ハッシュは外部に出さない。
type Service struct {
	userRepo  repository.UserRepository
	tokens    *TokenManager
	sanitizer security.InputSanitizerService
	config    ServiceConfig
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	tokens *TokenManager,
	sanitizer security.InputSanitizerService,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:  userRepo,
		tokens:    tokens,
		sanitizer: sanitizer,
		config:    config,
	}
}

// Register はユーザーを登録し、署名トークンを発行する。
// roleが空の場合はmemberをデフォルトとする。メールアドレス重複はDuplicateKeyエラー。
func (s *Service) Register(ctx context.Context, name, email, password string, role model.Role) (*model.User, string, error) {
	name = s.sanitizer.Sanitize(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if fields := validateRegistration(name, email, password, role); len(fields) > 0 {
		return nil, "", model.NewValidationError(fields...)
	}
	if role == "" {
		role = model.RoleMember
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return user, token, nil
}

// Login は認証情報を検証し、署名トークンを発行する。
// メールアドレス不明とパスワード不一致はどちらもInvalidCredentialsとして扱い、
// ユーザーの存在を漏らさない。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !CheckPassword(user.PasswordHash, password) {
		return nil, "", model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, nil
}

// validateRegistration は登録入力のバリデーションを行う。
func validateRegistration(name, email, password string, role model.Role) []model.FieldError {
	var fields []model.FieldError

	if name == "" {
		fields = append(fields, model.FieldError{Field: "name", Message: "name is required"})
	}
	if email == "" {
		fields = append(fields, model.FieldError{Field: "email", Message: "email is required"})
	} else if _, err := mail.ParseAddress(email); err != nil {
		fields = append(fields, model.FieldError{Field: "email", Message: "email format is invalid"})
	}
	if len(password) < minPasswordLength {
		fields = append(fields, model.FieldError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", minPasswordLength)})
	}
	if role != "" && !role.IsValid() {
		fields = append(fields, model.FieldError{Field: "role", Message: "role must be admin or member"})
	}

	return fields
}
