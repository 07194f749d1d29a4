package contact

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Contact{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(NewRepo(db))
}

func TestCreateContactValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	valid := CreateInput{
		Name:    "Bola",
		Email:   "bola@example.com",
		Phone:   "+2348012345678",
		Subject: "Late return",
		Message: "I need to extend my booking by one day.",
	}

	c, err := svc.Create(ctx, valid)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.Status != StatusPending {
		t.Fatalf("expected pending status, got %q", c.Status)
	}
	if c.ID == "" {
		t.Fatalf("expected generated id")
	}

	// 缺少必填字段逐个校验
	for _, mutate := range []func(*CreateInput){
		func(in *CreateInput) { in.Name = "" },
		func(in *CreateInput) { in.Email = "  " },
		func(in *CreateInput) { in.Message = "" },
	} {
		in := valid
		mutate(&in)
		if _, err := svc.Create(ctx, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	}
}

func TestUpdateContactStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateInput{Name: "Bola", Email: "bola@example.com", Message: "hello"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 合法值（大小写不敏感），无流转顺序限制
	got, err := svc.UpdateStatus(ctx, c.ID, "REPLIED")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got.Status != StatusReplied {
		t.Fatalf("expected replied, got %q", got.Status)
	}
	if got, err = svc.UpdateStatus(ctx, c.ID, "pending"); err != nil || got.Status != StatusPending {
		t.Fatalf("expected pending again, got %q err=%v", got.Status, err)
	}

	if _, err := svc.UpdateStatus(ctx, c.ID, "closed"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, "missing", "resolved"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListContactsByStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, CreateInput{
			Name:    fmt.Sprintf("user-%d", i),
			Email:   fmt.Sprintf("user-%d@example.com", i),
			Message: "question",
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	all, total, err := svc.List(ctx, "", 0, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("expected 3 contacts, got total=%d len=%d", total, len(all))
	}

	if _, err := svc.UpdateStatus(ctx, all[0].ID, "resolved"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	pending, total, err := svc.List(ctx, StatusPending, 0, 10)
	if err != nil {
		t.Fatalf("List pending: %v", err)
	}
	if total != 2 || len(pending) != 2 {
		t.Fatalf("expected 2 pending, got total=%d len=%d", total, len(pending))
	}
}
