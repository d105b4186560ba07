package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"smsledger/database"
	"smsledger/logger"
	"smsledger/models"

	"golang.org/x/crypto/bcrypt"
)

// AccountService 注册登录与 webhook 密钥管理
type AccountService struct {
	repo     database.Repository
	notifier Notifier
}

// NewAccountService notifier 可以为 nil
func NewAccountService(repo database.Repository, notifier Notifier) *AccountService {
	return &AccountService{repo: repo, notifier: notifier}
}

// Register 创建用户并生成 webhook 密钥
func (s *AccountService) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) < 6 {
		return nil, fmt.Errorf("%w: 用户名不能为空且密码至少 6 位", ErrValidation)
	}

	_, err := s.repo.FindUserByUsername(ctx, username)
	if err == nil {
		return nil, ErrConflict
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}
	key, err := models.GenerateWebhookKey()
	if err != nil {
		return nil, fmt.Errorf("生成 webhook 密钥失败: %w", err)
	}

	user := &models.User{
		Username:   username,
		Password:   string(hash),
		Email:      strings.TrimSpace(email),
		WebhookKey: key,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	logger.FromContext(ctx).Info().Str("user_id", user.ID).Msg("用户注册成功")
	return user, nil
}

// Login 用户名或邮箱 + 密码登录
func (s *AccountService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.FindUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// WebhookKey 获取当前密钥
func (s *AccountService) WebhookKey(ctx context.Context, userID string) (string, error) {
	user, err := s.repo.FindUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.WebhookKey, nil
}

// RegenerateWebhookKey 生成新密钥，旧密钥立即失效
func (s *AccountService) RegenerateWebhookKey(ctx context.Context, userID string) (string, error) {
	user, err := s.repo.FindUser(ctx, userID)
	if err != nil {
		return "", err
	}
	key, err := models.GenerateWebhookKey()
	if err != nil {
		return "", fmt.Errorf("生成 webhook 密钥失败: %w", err)
	}
	if err := s.repo.UpdateWebhookKey(ctx, userID, key); err != nil {
		return "", err
	}

	log := logger.FromContext(ctx)
	log.Info().Str("user_id", userID).Msg("webhook 密钥已重置")
	if s.notifier != nil && user.Email != "" {
		if err := s.notifier.SendWebhookKeyRegeneratedEmail(user.Email, user.Username, time.Now()); err != nil && !errors.Is(err, ErrEmailDisabled) {
			log.Warn().Err(err).Str("user_id", userID).Msg("发送密钥重置通知失败")
		}
	}
	return key, nil
}
