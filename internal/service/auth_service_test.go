package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/khornSaokhouch/server/internal/config"
	"github.com/khornSaokhouch/server/internal/constants"
	"github.com/khornSaokhouch/server/internal/models"
	"github.com/khornSaokhouch/server/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) *AuthService {
	t.Helper()

	dsn := fmt.Sprintf("file:auth_svc_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}
	return NewAuthService(repository.NewUserRepository(db), config.JWTConfig{
		SecretKey:   "auth-service-test-secret",
		ExpireHours: 1,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := setupAuthServiceTest(t)

	user, err := svc.Register(RegisterInput{
		Name:     "Dara",
		Email:    " Dara@Example.com ",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if user.Email != "dara@example.com" {
		t.Fatalf("邮箱应归一化为小写, got %s", user.Email)
	}
	if user.Role != constants.UserRoleCustomer {
		t.Fatalf("新用户角色 want customer got %s", user.Role)
	}
	if user.PasswordHash == "s3cret-pass" {
		t.Fatalf("密码不应明文存储")
	}

	token, logged, err := svc.Login("dara@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if token == "" || logged.ID != user.ID {
		t.Fatalf("登录应返回 token 与用户")
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 token 失败: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != constants.UserRoleCustomer {
		t.Fatalf("claims 不符: %+v", claims)
	}
}

func TestRegisterRejectsWeakPasswordAndDuplicate(t *testing.T) {
	svc := setupAuthServiceTest(t)

	if _, err := svc.Register(RegisterInput{Name: "A", Email: "a@example.com", Password: "short"}); !errors.Is(err, ErrPasswordTooWeak) {
		t.Fatalf("弱密码应拒绝, got %v", err)
	}

	if _, err := svc.Register(RegisterInput{Name: "A", Email: "a@example.com", Password: "long-enough-pass"}); err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if _, err := svc.Register(RegisterInput{Name: "B", Email: "A@Example.com", Password: "long-enough-pass"}); !errors.Is(err, ErrUserExists) {
		t.Fatalf("重复邮箱应拒绝, got %v", err)
	}
}

func TestLoginRejectsBadCredentialsAndDisabled(t *testing.T) {
	svc := setupAuthServiceTest(t)

	user, err := svc.Register(RegisterInput{Name: "A", Email: "a@example.com", Password: "long-enough-pass"})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	if _, _, err := svc.Login("nobody@example.com", "whatever"); !errors.Is(err, ErrCredentialsInvalid) {
		t.Fatalf("未知用户 want ErrCredentialsInvalid got %v", err)
	}
	if _, _, err := svc.Login("a@example.com", "wrong-password"); !errors.Is(err, ErrCredentialsInvalid) {
		t.Fatalf("密码错误 want ErrCredentialsInvalid got %v", err)
	}

	user.IsActive = false
	if err := svc.userRepo.Update(user); err != nil {
		t.Fatalf("更新用户失败: %v", err)
	}
	if _, _, err := svc.Login("a@example.com", "long-enough-pass"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("停用用户 want ErrUserDisabled got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := setupAuthServiceTest(t)

	user, err := svc.Register(RegisterInput{Name: "A", Email: "a@example.com", Password: "long-enough-pass"})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	if err := svc.ChangePassword(user.ID, "wrong-old", "another-long-pass"); !errors.Is(err, ErrCredentialsInvalid) {
		t.Fatalf("旧密码错误应拒绝, got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "long-enough-pass", "another-long-pass"); err != nil {
		t.Fatalf("修改密码失败: %v", err)
	}
	if _, _, err := svc.Login("a@example.com", "another-long-pass"); err != nil {
		t.Fatalf("新密码登录失败: %v", err)
	}
}
