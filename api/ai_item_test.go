package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"smsledger/config"
	"smsledger/database"
	"smsledger/middleware"
	"smsledger/models"
	"smsledger/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const meituanReply = `{"type":"EXPENSE","amount":128.50,"description":"美团外卖","date":"2026-02-27","categoryHint":"美团","confidence":"HIGH"}`

var dsnSafe = strings.NewReplacer("/", "_", " ", "_")

// fakeLLM 固定回复的模型客户端
type fakeLLM struct {
	reply string
	err   error
	calls int32
}

func (f *fakeLLM) Complete(ctx context.Context, system, user string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.reply, f.err
}

type testEnv struct {
	router *gin.Engine
	store  *database.Store
	db     *gorm.DB
	llm    *fakeLLM
	cfg    *config.Config
}

func setupTestEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "release"},
		Database: config.DatabaseConfig{
			Driver:       "sqlite",
			SQLitePath:   fmt.Sprintf("file:api_%s?mode=memory&cache=shared", dsnSafe.Replace(t.Name())),
			MaxIdleConns: 1,
			MaxOpenConns: 1,
		},
		JWT: config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		LLM: config.LLMConfig{Timeout: time.Second},
		Review: config.ReviewConfig{
			BatchWorkers:    2,
			MaxBatchSize:    10,
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
	}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	middleware.InitJWT(cfg)

	store := database.NewStore(db)
	client := &fakeLLM{reply: meituanReply}
	review := service.NewReviewService(store, cfg.Review)

	authHandler := NewAuthHandler(cfg, service.NewAccountService(store, nil))
	itemHandler := NewAiItemHandler(
		service.NewIngestionService(store, client, cfg.LLM.Timeout),
		review,
		service.NewBatchConfirmer(review, cfg.Review),
	)
	categoryHandler := NewCategoryHandler(store)

	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)
	v1.GET("/categories", categoryHandler.List)
	v1.POST("/ai-items/webhook", itemHandler.Webhook)

	authorized := v1.Group("")
	authorized.Use(middleware.JWTAuth())
	authorized.GET("/auth/webhook-key", authHandler.GetWebhookKey)
	authorized.POST("/auth/webhook-key/regenerate", authHandler.RegenerateWebhookKey)
	authorized.GET("/ai-items", itemHandler.List)
	authorized.GET("/ai-items/statistics", itemHandler.Statistics)
	authorized.POST("/ai-items/batch-confirm", itemHandler.BatchConfirm)
	authorized.GET("/ai-items/:id", itemHandler.Get)
	authorized.PATCH("/ai-items/:id", itemHandler.Update)
	authorized.POST("/ai-items/:id/confirm", itemHandler.Confirm)
	authorized.DELETE("/ai-items/:id", itemHandler.Reject)

	return &testEnv{router: r, store: store, db: db, llm: client, cfg: cfg}
}

// do 发送请求并解析通用响应
func (e *testEnv) do(t *testing.T, method, path, token, body string) (int, map[string]interface{}) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

// newUser 创建用户并签发 token
func (e *testEnv) newUser(t *testing.T, name string) (*models.User, string) {
	user := &models.User{Username: name, Password: "x", Email: name + "@example.com", WebhookKey: "key-" + name}
	require.NoError(t, e.store.CreateUser(context.Background(), user))
	token, err := middleware.GenerateToken(user.ID, user.Username, time.Hour)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) newItem(t *testing.T, userID string) *models.AiPendingItem {
	item := &models.AiPendingItem{
		UserID:      userID,
		RawText:     "【银行】支出 50.00 元",
		Type:        models.TypeExpense,
		Amount:      decimal.RequireFromString("50.00"),
		Description: "便利店",
		ParsedDate:  time.Date(2026, 2, 20, 0, 0, 0, 0, time.Local),
		Confidence:  models.ConfidenceMedium,
		Status:      models.StatusPending,
	}
	require.NoError(t, e.store.CreateItem(context.Background(), item))
	return item
}

func (e *testEnv) categoryID(t *testing.T, name string, typ models.TransactionType) string {
	cats, err := e.store.ListCategories(context.Background(), typ)
	require.NoError(t, err)
	for _, c := range cats {
		if c.Name == name {
			return c.ID
		}
	}
	t.Fatalf("category %s not found", name)
	return ""
}

func (e *testEnv) countRows(t *testing.T, model interface{}) int64 {
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func webhookBody(userID, key, raw string) string {
	b, _ := json.Marshal(map[string]string{"userId": userID, "webhookKey": key, "rawText": raw})
	return string(b)
}

func TestAiItemHandler_Webhook_Unauthorized(t *testing.T) {
	env := setupTestEnv(t)
	user, _ := env.newUser(t, "alice")

	tests := []struct {
		name   string
		userID string
		key    string
	}{
		{"错误密钥", user.ID, "wrong-key"},
		{"用户不存在", "00000000-0000-4000-8000-000000000000", "key-alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := env.do(t, "POST", "/api/v1/ai-items/webhook", "", webhookBody(tt.userID, tt.key, "支出 10 元"))
			assert.Equal(t, 401, code)
			assert.Equal(t, float64(401), resp["code"])
		})
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&env.llm.calls))
	assert.Equal(t, int64(0), env.countRows(t, &models.AiPendingItem{}))
}

func TestAiItemHandler_Webhook_BadRequest(t *testing.T) {
	env := setupTestEnv(t)
	user, _ := env.newUser(t, "alice")

	code, _ := env.do(t, "POST", "/api/v1/ai-items/webhook", "", `{"userId":"`+user.ID+`","webhookKey":"key-alice"}`)
	assert.Equal(t, 400, code)

	code, _ = env.do(t, "POST", "/api/v1/ai-items/webhook", "", `{"webhookKey":"key-alice","rawText":"支出 10 元"}`)
	assert.Equal(t, 400, code)
	assert.Equal(t, int32(0), atomic.LoadInt32(&env.llm.calls))
}

func TestAiItemHandler_Webhook_UpstreamFailure(t *testing.T) {
	env := setupTestEnv(t)
	user, _ := env.newUser(t, "alice")
	env.llm.err = errors.New("connection refused")

	code, resp := env.do(t, "POST", "/api/v1/ai-items/webhook", "", webhookBody(user.ID, user.WebhookKey, "支出 10 元"))
	assert.Equal(t, 502, code)
	assert.Equal(t, float64(502), resp["code"])
	assert.Equal(t, int64(0), env.countRows(t, &models.AiPendingItem{}))
}

func TestAiItemHandler_Webhook_OwnerIDAlias(t *testing.T) {
	env := setupTestEnv(t)
	user, _ := env.newUser(t, "alice")

	body := `{"ownerId":"` + user.ID + `","webhookKey":"key-alice","rawText":"支出 128.50 元 美团外卖"}`
	code, resp := env.do(t, "POST", "/api/v1/ai-items/webhook", "", body)
	require.Equal(t, 200, code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, user.ID, data["user_id"])
}

func TestAiItemHandler_Lifecycle(t *testing.T) {
	env := setupTestEnv(t)
	alice, aliceToken := env.newUser(t, "alice")
	_, bobToken := env.newUser(t, "bob")

	// 1. 短信进入
	code, resp := env.do(t, "POST", "/api/v1/ai-items/webhook", "",
		webhookBody(alice.ID, alice.WebhookKey, "【招商银行】您尾号8888的账户于02月27日14:30支出128.50元，商户名称:美团外卖。"))
	require.Equal(t, 200, code)
	item := resp["data"].(map[string]interface{})
	itemID := item["id"].(string)
	assert.Equal(t, "PENDING", item["status"])
	assert.Equal(t, "HIGH", item["confidence"])
	assert.Equal(t, "EXPENSE", item["type"])
	assert.Equal(t, "128.5", item["amount"])
	category := item["category"].(map[string]interface{})
	assert.Equal(t, "餐饮美食", category["name"])

	// 2. 列表
	code, resp = env.do(t, "GET", "/api/v1/ai-items?status=pending", aliceToken, "")
	require.Equal(t, 200, code)
	page := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), page["total"])
	assert.Len(t, page["list"], 1)

	// 3. 其他用户无权访问
	code, _ = env.do(t, "GET", "/api/v1/ai-items/"+itemID, bobToken, "")
	assert.Equal(t, 403, code)
	code, _ = env.do(t, "GET", "/api/v1/ai-items/not-exist", aliceToken, "")
	assert.Equal(t, 404, code)

	// 4. 确认入账
	catID := category["id"].(string)
	confirm := `{"type":"EXPENSE","amount":"128.50","description":"美团外卖","date":"2026-02-27","categoryId":"` + catID + `"}`
	code, resp = env.do(t, "POST", "/api/v1/ai-items/"+itemID+"/confirm", aliceToken, confirm)
	require.Equal(t, 200, code)
	assert.Equal(t, "确认成功", resp["message"])
	data := resp["data"].(map[string]interface{})
	tx := data["transaction"].(map[string]interface{})
	assert.Equal(t, "AI_EXTRACTED", tx["source"])
	assert.Equal(t, itemID, tx["origin_item_id"])
	assert.Equal(t, "CONFIRMED", data["aiItem"].(map[string]interface{})["status"])

	// 5. 重复确认与删除都被拒绝
	code, _ = env.do(t, "POST", "/api/v1/ai-items/"+itemID+"/confirm", aliceToken, confirm)
	assert.Equal(t, 409, code)
	code, _ = env.do(t, "DELETE", "/api/v1/ai-items/"+itemID, aliceToken, "")
	assert.Equal(t, 409, code)
	code, _ = env.do(t, "PATCH", "/api/v1/ai-items/"+itemID, aliceToken, `{"description":"改"}`)
	assert.Equal(t, 409, code)
	assert.Equal(t, int64(1), env.countRows(t, &models.Transaction{}))

	// 6. 统计
	code, resp = env.do(t, "GET", "/api/v1/ai-items/statistics", aliceToken, "")
	require.Equal(t, 200, code)
	stats := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["total"])
	assert.Equal(t, float64(1), stats["confirmed"])
}

func TestAiItemHandler_ConfirmValidation(t *testing.T) {
	env := setupTestEnv(t)
	alice, token := env.newUser(t, "alice")
	item := env.newItem(t, alice.ID)
	incomeCat := env.categoryID(t, "工资收入", models.TypeIncome)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"缺少类型", `{"amount":"10","categoryId":"` + incomeCat + `"}`, 400},
		{"无效类型", `{"type":"TRANSFER","amount":"10","categoryId":"` + incomeCat + `"}`, 400},
		{"金额为零", `{"type":"INCOME","amount":"0","categoryId":"` + incomeCat + `"}`, 400},
		{"分类类型不一致", `{"type":"EXPENSE","amount":"10","categoryId":"` + incomeCat + `"}`, 400},
		{"缺少分类", `{"type":"INCOME","amount":"10"}`, 400},
		{"日期格式错误", `{"type":"INCOME","amount":"10","date":"2026/13/01","categoryId":"` + incomeCat + `"}`, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := env.do(t, "POST", "/api/v1/ai-items/"+item.ID+"/confirm", token, tt.body)
			assert.Equal(t, tt.code, code)
		})
	}

	got, err := env.store.FindItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, int64(0), env.countRows(t, &models.Transaction{}))
}

func TestAiItemHandler_UpdateAndReject(t *testing.T) {
	env := setupTestEnv(t)
	alice, token := env.newUser(t, "alice")
	item := env.newItem(t, alice.ID)

	code, resp := env.do(t, "PATCH", "/api/v1/ai-items/"+item.ID, token, `{"amount":"66.60","description":"超市"}`)
	require.Equal(t, 200, code)
	assert.Equal(t, "更新成功", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "66.6", data["amount"])
	assert.Equal(t, "超市", data["description"])
	assert.Equal(t, "PENDING", data["status"])
	assert.Equal(t, "MEDIUM", data["confidence"])

	code, _ = env.do(t, "PATCH", "/api/v1/ai-items/"+item.ID, token, `{"amount":"-1"}`)
	assert.Equal(t, 400, code)

	code, resp = env.do(t, "DELETE", "/api/v1/ai-items/"+item.ID, token, "")
	require.Equal(t, 200, code)
	assert.Equal(t, "已删除", resp["message"])

	got, err := env.store.FindItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got.Status)

	code, _ = env.do(t, "DELETE", "/api/v1/ai-items/"+item.ID, token, "")
	assert.Equal(t, 409, code)
}

func TestAiItemHandler_BatchConfirm(t *testing.T) {
	env := setupTestEnv(t)
	alice, token := env.newUser(t, "alice")
	first := env.newItem(t, alice.ID)
	second := env.newItem(t, alice.ID)
	catID := env.categoryID(t, "购物消费", models.TypeExpense)

	body := `{"items":[` +
		`{"id":"` + first.ID + `","type":"EXPENSE","amount":"50","categoryId":"` + catID + `"},` +
		`{"id":"` + second.ID + `","type":"EXPENSE","amount":"50"}` +
		`]}`
	code, resp := env.do(t, "POST", "/api/v1/ai-items/batch-confirm", token, body)
	require.Equal(t, 200, code)

	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["successCount"])
	assert.Equal(t, float64(1), data["failedCount"])
	results := data["results"].([]interface{})
	require.Len(t, results, 2)
	assert.Equal(t, first.ID, results[0].(map[string]interface{})["itemId"])
	assert.Equal(t, true, results[0].(map[string]interface{})["success"])
	assert.Equal(t, false, results[1].(map[string]interface{})["success"])
	assert.NotEmpty(t, results[1].(map[string]interface{})["error"])
	assert.Equal(t, int64(1), env.countRows(t, &models.Transaction{}))

	code, _ = env.do(t, "POST", "/api/v1/ai-items/batch-confirm", token, `{"items":[]}`)
	assert.Equal(t, 400, code)
}

func TestAiItemHandler_RequiresToken(t *testing.T) {
	env := setupTestEnv(t)

	code, resp := env.do(t, "GET", "/api/v1/ai-items", "", "")
	assert.Equal(t, 401, code)
	assert.Equal(t, float64(401), resp["code"])
}

func TestCategoryHandler_List(t *testing.T) {
	env := setupTestEnv(t)

	code, resp := env.do(t, "GET", "/api/v1/categories?type=income", "", "")
	require.Equal(t, 200, code)
	list := resp["data"].([]interface{})
	assert.Len(t, list, 5)
	assert.Equal(t, "工资收入", list[0].(map[string]interface{})["name"])

	code, resp = env.do(t, "GET", "/api/v1/categories", "", "")
	require.Equal(t, 200, code)
	assert.Len(t, resp["data"].([]interface{}), 15)

	code, _ = env.do(t, "GET", "/api/v1/categories?type=TRANSFER", "", "")
	assert.Equal(t, 400, code)
}
