package integrations

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	_ "github.com/lib/pq"

	"github.com/pressly/goose/v3"

	"gitlab.ozon.dev/qwestard/orders-admin/internal/cache"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/catalog"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/config"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/models"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/repository"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/server"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/service"
)

// Прогон требует живой БД: INTEGRATION_DSN=... go test ./integrations/...
type IntegrationSuite struct {
	suite.Suite

	db         *sql.DB
	testServer *httptest.Server
	user       string
	password   string
}

func (s *IntegrationSuite) SetupSuite() {
	dsn := os.Getenv("INTEGRATION_DSN")
	if dsn == "" {
		s.T().Skip("INTEGRATION_DSN не задан")
	}

	cfg := config.LoadConfig()
	s.user = cfg.Username
	s.password = cfg.Password

	var err error
	s.db, err = sql.Open("postgres", dsn)
	if err != nil {
		s.T().Fatalf("sql.Open error: %v", err)
	}
	if err = s.db.Ping(); err != nil {
		s.T().Fatalf("db.Ping error: %v", err)
	}

	if err := goose.Up(s.db, "../migrations"); err != nil {
		s.T().Fatalf("goose.Up error: %v", err)
	}
	if _, err := s.db.Exec("TRUNCATE orders CASCADE"); err != nil {
		s.T().Logf("truncate error: %v", err)
	}

	repo := repository.NewOrderRepository(s.db)
	for _, o := range models.DemoOrders() {
		if err := repo.Create(o); err != nil {
			s.T().Fatalf("seed error: %v", err)
		}
	}

	svc := service.NewOrderService(repo, cache.NewOrdersCache(), zap.NewNop())
	srv := server.NewServer(svc, catalog.New(), nil, cfg, zap.NewNop())

	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	s.testServer = httptest.NewServer(mux)
}

func (s *IntegrationSuite) TearDownSuite() {
	if s.testServer != nil {
		s.testServer.Close()
	}
	if s.db != nil {
		_, _ = s.db.Exec("TRUNCATE orders CASCADE")
		_ = s.db.Close()
	}
}

func (s *IntegrationSuite) TestListOrders() {
	resp, body := s.doRequest(http.MethodGet, "/orders", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var lr struct {
		Orders []models.Order `json:"orders"`
		Total  int            `json:"total"`
	}
	s.NoError(json.Unmarshal(body, &lr))
	s.GreaterOrEqual(lr.Total, 2)
}

func (s *IntegrationSuite) TestSaveAndReadBack() {
	resp, body := s.doRequest(http.MethodGet, "/orders/1001", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var o models.Order
	s.Require().NoError(json.Unmarshal(body, &o))

	o.Status = models.StatusShipping
	resp, _ = s.doRequest(http.MethodPut, "/orders/1001", o)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	resp, body = s.doRequest(http.MethodGet, "/orders/1001", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().NoError(json.Unmarshal(body, &o))
	s.Equal(models.StatusShipping, o.Status)
}

func (s *IntegrationSuite) TestCommentRoundTrip() {
	resp, body := s.doRequest(http.MethodPost, "/orders/1002/comments",
		map[string]string{"text": "интеграционный комментарий"})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var c models.Comment
	s.Require().NoError(json.Unmarshal(body, &c))
	s.Equal("Менеджер", c.Author)

	resp, body = s.doRequest(http.MethodGet, "/orders/1002", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var o models.Order
	s.Require().NoError(json.Unmarshal(body, &o))
	s.NotEmpty(o.Comments)
}

func (s *IntegrationSuite) TestDeleteOrder() {
	repo := repository.NewOrderRepository(s.db)
	s.Require().NoError(repo.Create(&models.Order{
		ID: 2001, Status: models.StatusNew, PaymentStatus: models.PaymentUnpaid,
	}))

	resp, _ := s.doRequest(http.MethodDelete, "/orders/2001",
		map[string]string{"reason": "Дубль заказа"})
	s.Equal(http.StatusNoContent, resp.StatusCode)

	resp, _ = s.doRequest(http.MethodGet, "/orders/2001", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *IntegrationSuite) doRequest(method, path string, body interface{}) (*http.Response, []byte) {
	var reqBody []byte
	var err error
	if body != nil {
		reqBody, err = json.Marshal(body)
		if err != nil {
			s.T().Fatalf("json.Marshal error: %v", err)
		}
	}

	req, err := http.NewRequest(method, s.testServer.URL+path, bytes.NewReader(reqBody))
	if err != nil {
		s.T().Fatalf("http.NewRequest: %v", err)
	}
	req.SetBasicAuth(s.user, s.password)
	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		s.T().Fatalf("client.Do: %v", err)
	}
	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		s.T().Fatalf("ReadAll: %v", err)
	}
	return resp, respBody
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}
