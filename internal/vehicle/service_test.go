package vehicle

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
	if err := db.AutoMigrate(&Vehicle{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(NewRepo(db))
}

func baseInput() VehicleInput {
	return VehicleInput{
		Name:        "Civic LX",
		Brand:       "Honda",
		Model:       "Civic",
		Type:        "sedan",
		Location:    "lagos",
		ImageURL:    "https://img.example/civic.jpg",
		PricePerDay: 5000,
		Stock:       2,
		Features:    []string{"gps", "bluetooth"},
	}
}

func TestCreateDerivesAvailability(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, baseInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !v.IsAvailable {
		t.Fatalf("expected available with stock=2")
	}

	in := baseInput()
	in.Stock = 0
	v2, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create stock=0: %v", err)
	}
	if v2.IsAvailable {
		t.Fatalf("expected unavailable with stock=0")
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []func(*VehicleInput){
		func(in *VehicleInput) { in.Name = "" },
		func(in *VehicleInput) { in.Brand = " " },
		func(in *VehicleInput) { in.Model = "" },
		func(in *VehicleInput) { in.ImageURL = "" },
		func(in *VehicleInput) { in.PricePerDay = 0 },
		func(in *VehicleInput) { in.Stock = -1 },
	}
	for i, mutate := range cases {
		in := baseInput()
		mutate(&in)
		if _, err := svc.Create(ctx, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestStockOpsKeepAvailabilityInSync(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, baseInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// set 到 0 是合法的下架操作
	v2, err := svc.AdjustStock(ctx, v.ID, OpSet, 0)
	if err != nil {
		t.Fatalf("set 0: %v", err)
	}
	if v2.Stock != 0 || v2.IsAvailable {
		t.Fatalf("expected stock=0 unavailable, got stock=%d available=%v", v2.Stock, v2.IsAvailable)
	}

	// 库存为 0 时扣减应失败
	if _, err := svc.AdjustStock(ctx, v.ID, OpDecrement, 1); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// 补充库存后重新可用
	v3, err := svc.AdjustStock(ctx, v.ID, OpIncrement, 3)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if v3.Stock != 3 || !v3.IsAvailable {
		t.Fatalf("expected stock=3 available, got stock=%d available=%v", v3.Stock, v3.IsAvailable)
	}

	// 扣减到 0 同步不可用
	v4, err := svc.AdjustStock(ctx, v.ID, OpDecrement, 3)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if v4.Stock != 0 || v4.IsAvailable {
		t.Fatalf("expected stock=0 unavailable, got stock=%d available=%v", v4.Stock, v4.IsAvailable)
	}

	if _, err := svc.AdjustStock(ctx, "missing", OpIncrement, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.AdjustStock(ctx, v.ID, StockOp("reset"), 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown op, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	mk := func(name, brand, model string, price int64, stock int) {
		in := baseInput()
		in.Name, in.Brand, in.Model = name, brand, model
		in.PricePerDay = price
		in.Stock = stock
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}
	mk("Civic LX", "Honda", "Civic", 5000, 1)
	mk("Corolla", "Toyota", "Corolla", 4000, 1)
	mk("Old Civic", "Honda", "Civic", 3000, 0) // 无库存，公开目录不可见

	// 大小写不敏感的子串搜索，且公开目录只含可用车辆
	vs, total, err := svc.List(ctx, ListFilter{Search: "CIVIC", OnlyAvailable: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(vs) != 1 || vs[0].Name != "Civic LX" {
		t.Fatalf("expected only available civic, got total=%d vs=%#v", total, vs)
	}

	// 管理端列表不过滤可用性
	_, totalAll, err := svc.List(ctx, ListFilter{Search: "civic"})
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if totalAll != 2 {
		t.Fatalf("expected 2 civics unfiltered, got %d", totalAll)
	}

	// 价格区间 AND 组合
	_, totalPriced, err := svc.List(ctx, ListFilter{MinPrice: 3500, MaxPrice: 4500, OnlyAvailable: true})
	if err != nil {
		t.Fatalf("List priced: %v", err)
	}
	if totalPriced != 1 {
		t.Fatalf("expected 1 vehicle in price range, got %d", totalPriced)
	}
}
