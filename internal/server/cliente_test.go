package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang/mock/gomock"
	clientedomain "github.com/smallbiznis/clientes/internal/cliente/domain"
	"github.com/smallbiznis/clientes/internal/cliente/mocks"
	clienterepo "github.com/smallbiznis/clientes/internal/cliente/repository"
	clientesvc "github.com/smallbiznis/clientes/internal/cliente/service"
	"github.com/smallbiznis/clientes/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type envelope struct {
	Result   bool                    `json:"result"`
	Error    string                  `json:"error"`
	Message  string                  `json:"message"`
	Cliente  *clientedomain.Cliente  `json:"cliente"`
	Clientes []clientedomain.Cliente `json:"clientes"`
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&clientedomain.Cliente{}))
	return conn
}

func newTestRouter(t *testing.T, repo clientedomain.Repository, strict bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := clientesvc.New(clientesvc.Params{
		DB:   openTestDB(t),
		Log:  zap.NewNop(),
		Repo: repo,
	})

	router := gin.New()
	router.Use(ErrorHandlingMiddleware(config.NewStaticHTTPConfigHolder(config.HTTPConfig{
		Addr:         ":0",
		StrictStatus: strict,
	})))
	NewServer(ServerParams{Gin: router, ClienteSvc: svc})
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body string) (int, envelope) {
	t.Helper()

	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var out envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return resp.Code, out
}

func TestCreateCliente(t *testing.T) {
	router := newTestRouter(t, clienterepo.Provide(), false)

	code, out := doRequest(t, router, http.MethodPost, "/clientes",
		`{"nombre":"Ana","tiktok":"@ana","estado":true,"id_usuario":1}`)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, out.Result)
	require.NotNil(t, out.Cliente)
	assert.NotZero(t, out.Cliente.ID)
	assert.Equal(t, "Ana", out.Cliente.Name)
	assert.Equal(t, "@ana", out.Cliente.SocialHandle)
	assert.True(t, out.Cliente.Status)
	assert.Equal(t, int64(1), out.Cliente.OwnerID)
	assert.Nil(t, out.Cliente.Phone)
	assert.Nil(t, out.Cliente.Email)
}

func TestCreateClienteSerializesNullOptionals(t *testing.T) {
	router := newTestRouter(t, clienterepo.Provide(), false)

	req := httptest.NewRequest(http.MethodPost, "/clientes",
		bytes.NewBufferString(`{"nombre":"Ana","tiktok":"@ana","estado":true,"id_usuario":1}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &raw))
	var cliente map[string]any
	require.NoError(t, json.Unmarshal(raw["cliente"], &cliente))
	assert.JSONEq(t, "true", string(raw["result"]))
	require.Contains(t, cliente, "telefono")
	require.Contains(t, cliente, "correo")
	assert.Nil(t, cliente["telefono"])
	assert.Nil(t, cliente["correo"])
}

func TestCreateClienteWithFalseEstado(t *testing.T) {
	router := newTestRouter(t, clienterepo.Provide(), false)

	code, out := doRequest(t, router, http.MethodPost, "/clientes",
		`{"nombre":"Ana","tiktok":"@ana","estado":false,"id_usuario":2,"telefono":"555","correo":"ana@example.com"}`)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, out.Cliente)
	assert.False(t, out.Cliente.Status)
	require.NotNil(t, out.Cliente.Phone)
	assert.Equal(t, "555", *out.Cliente.Phone)
}

func TestCreateClienteIncompleteData(t *testing.T) {
	router := newTestRouter(t, clienterepo.Provide(), false)

	bodies := []string{
		`{"tiktok":"@ana","estado":true,"id_usuario":1}`,
		`{"nombre":"","tiktok":"@ana","estado":true,"id_usuario":1}`,
		`{"nombre":"Ana","estado":true,"id_usuario":1}`,
		`{"nombre":"Ana","tiktok":"@ana","id_usuario":1}`,
		`{"nombre":"Ana","tiktok":"@ana","estado":true}`,
		`{"nombre":"Ana","tiktok":"@ana","estado":true,"id_usuario":0}`,
		`{"nombre":"Ana","tiktok":"@ana","estado":true,"id_usuario":-4}`,
		`{"nombre":"Ana","tiktok":"@ana","estado":true,"id_usuario":"1"}`,
		`{"nombre":"Ana","tiktok":"@ana","estado":null,"id_usuario":1}`,
		`not json`,
	}
	for _, body := range bodies {
		code, out := doRequest(t, router, http.MethodPost, "/clientes", body)
		assert.Equal(t, http.StatusBadRequest, code, body)
		assert.False(t, out.Result)
		assert.Equal(t, "Datos incompletos", out.Error, body)
	}
}

func TestCreateClienteDuplicate(t *testing.T) {
	body := `{"nombre":"Ana","tiktok":"@ana","estado":true,"id_usuario":1}`

	t.Run("legacy status", func(t *testing.T) {
		router := newTestRouter(t, clienterepo.Provide(), false)
		code, _ := doRequest(t, router, http.MethodPost, "/clientes", body)
		require.Equal(t, http.StatusOK, code)

		code, out := doRequest(t, router, http.MethodPost, "/clientes", body)
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "La cuenta ya existe", out.Error)
	})

	t.Run("strict status", func(t *testing.T) {
		router := newTestRouter(t, clienterepo.Provide(), true)
		code, _ := doRequest(t, router, http.MethodPost, "/clientes", body)
		require.Equal(t, http.StatusOK, code)

		code, out := doRequest(t, router, http.MethodPost, "/clientes", body)
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, "La cuenta ya existe", out.Error)
	})
}

func TestUpdateDuplicateHandleIsLoggedAsInternal(t *testing.T) {
	cases := []struct {
		name   string
		method string
		path   string
		body   string
		op     string
		msg    string
	}{
		{"path id", http.MethodPut, "/clientes/2", `{"tiktok":"@ana"}`, "update_cliente", "Error al actualizar el cliente"},
		{"body id", http.MethodPut, "/clientes", `{"id":2,"tiktok":"@ana"}`, "update_cliente_by_body", "Error al actualizar cliente"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)
			t.Cleanup(zap.ReplaceGlobals(zap.New(core)))

			router := newTestRouter(t, clienterepo.Provide(), true)
			doRequest(t, router, http.MethodPost, "/clientes", `{"nombre":"Ana","tiktok":"@ana","estado":true,"id_usuario":1}`)
			doRequest(t, router, http.MethodPost, "/clientes", `{"nombre":"Luis","tiktok":"@luis","estado":true,"id_usuario":1}`)

			code, out := doRequest(t, router, tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusInternalServerError, code)
			assert.Equal(t, tc.msg, out.Error)

			entries := logs.FilterMessage("request failed").All()
			require.Len(t, entries, 1)
			assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
			assert.Equal(t, tc.op, entries[0].ContextMap()["operation"])
		})
	}
}

func TestExpectedOutcomesAreNotLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	t.Cleanup(zap.ReplaceGlobals(zap.New(core)))

	router := newTestRouter(t, clienterepo.Provide(), false)
	body := `{"nombre":"Ana","tiktok":"@ana","estado":true,"id_usuario":1}`
	doRequest(t, router, http.MethodPost, "/clientes", body)

	code, _ := doRequest(t, router, http.MethodPost, "/clientes", body)
	assert.Equal(t, http.StatusInternalServerError, code)
	code, _ = doRequest(t, router, http.MethodGet, "/clientes/99", "")
	assert.Equal(t, http.StatusNotFound, code)

	assert.Zero(t, logs.FilterMessage("request failed").Len())
}

func TestGetClienteByID(t *testing.T) {
	router := newTestRouter(t, clienterepo.Provide(), false)

	_, created := doRequest(t, router, http.MethodPost, "/clientes",
		`{"nombre":"Ana","tiktok":"@ana","estado":true,"id_usuario":1}`)
	require.NotNil(t, created.Cliente)

	code, out := doRequest(t, router, http.MethodGet, fmt.Sprintf("/clientes/%d", created.Cliente.ID), "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, created.Cliente, out.Cliente)

	code, out = doRequest(t, router, http.MethodGet, "/clientes/999", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, envelope{Result: false, Error: "Cliente no encontrado"}, out)

	code, out = doRequest(t, router, http.MethodGet, "/clientes/abc", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ID invalido", out.Error)
}

func TestListClientes(t *testing.T) {
	router := newTestRouter(t, clienterepo.Provide(), false)

	code, out := doRequest(t, router, http.MethodGet, "/clientes", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, envelope{Result: false, Error: "Parametros faltantes"}, out)

	code, out = doRequest(t, router, http.MethodGet, "/clientes?id_usuario=abc", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Parametros faltantes", out.Error)

	code, out = doRequest(t, router, http.MethodGet, "/clientes?id_usuario=42", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Clientes no encontrados", out.Error)
	assert.Nil(t, out.Clientes)

	doRequest(t, router, http.MethodPost, "/clientes", `{"nombre":"A","tiktok":"@a","estado":true,"id_usuario":42}`)
	doRequest(t, router, http.MethodPost, "/clientes", `{"nombre":"B","tiktok":"@b","estado":true,"id_usuario":7}`)
	doRequest(t, router, http.MethodPost, "/clientes", `{"nombre":"C","tiktok":"@c","estado":false,"id_usuario":42}`)

	code, out = doRequest(t, router, http.MethodGet, "/clientes?id_usuario=42", "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, out.Result)
	require.Len(t, out.Clientes, 2)
	assert.Equal(t, "A", out.Clientes[0].Name)
	assert.Equal(t, "C", out.Clientes[1].Name)
}

func TestUpdateCliente(t *testing.T) {
	router := newTestRouter(t, clienterepo.Provide(), false)

	_, created := doRequest(t, router, http.MethodPost, "/clientes",
		`{"nombre":"Ana","tiktok":"@ana","telefono":"555","estado":true,"id_usuario":1}`)
	require.NotNil(t, created.Cliente)
	path := fmt.Sprintf("/clientes/%d", created.Cliente.ID)

	code, out := doRequest(t, router, http.MethodPut, path, `{"estado":false,"id_usuario":99}`)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, out.Cliente)
	assert.False(t, out.Cliente.Status)
	assert.Equal(t, "Ana", out.Cliente.Name)
	require.NotNil(t, out.Cliente.Phone)
	assert.Equal(t, "555", *out.Cliente.Phone)
	assert.Equal(t, int64(1), out.Cliente.OwnerID)
}

func TestUpdateClienteWithoutData(t *testing.T) {
	router := newTestRouter(t, clienterepo.Provide(), false)

	for _, body := range []string{`{}`, `{"nombre":"","correo":""}`, ``} {
		code, out := doRequest(t, router, http.MethodPut, "/clientes/5", body)
		assert.Equal(t, http.StatusBadRequest, code, body)
		assert.Equal(t, envelope{Result: false, Error: "No hay datos para actualizar"}, out)
	}
}

func TestUpdateClienteNotFound(t *testing.T) {
	legacy := newTestRouter(t, clienterepo.Provide(), false)
	code, out := doRequest(t, legacy, http.MethodPut, "/clientes/77", `{"nombre":"Ana"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Cliente no encontrado", out.Error)

	strict := newTestRouter(t, clienterepo.Provide(), true)
	code, out = doRequest(t, strict, http.MethodPut, "/clientes/77", `{"nombre":"Ana"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Cliente no encontrado", out.Error)
}

func TestUpdateClienteByBody(t *testing.T) {
	router := newTestRouter(t, clienterepo.Provide(), false)

	_, created := doRequest(t, router, http.MethodPost, "/clientes",
		`{"nombre":"Ana","tiktok":"@ana","estado":true,"id_usuario":1}`)
	require.NotNil(t, created.Cliente)

	code, out := doRequest(t, router, http.MethodPut, "/clientes", `{"nombre":"Ana Maria"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ID requerido para actualizar", out.Error)

	code, out = doRequest(t, router, http.MethodPut, "/clientes",
		fmt.Sprintf(`{"id":%d,"correo":"ana@example.com"}`, created.Cliente.ID))
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, out.Cliente.Email)
	assert.Equal(t, "ana@example.com", *out.Cliente.Email)

	code, out = doRequest(t, router, http.MethodPut, "/clientes",
		fmt.Sprintf(`{"id":%d}`, created.Cliente.ID))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ana", out.Cliente.Name)

	code, out = doRequest(t, router, http.MethodPut, "/clientes", `{"id":404,"nombre":"X"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Cliente no encontrado", out.Error)
}

func TestDeleteCliente(t *testing.T) {
	router := newTestRouter(t, clienterepo.Provide(), false)

	_, created := doRequest(t, router, http.MethodPost, "/clientes",
		`{"nombre":"Ana","tiktok":"@ana","estado":true,"id_usuario":1}`)
	require.NotNil(t, created.Cliente)
	path := fmt.Sprintf("/clientes/%d", created.Cliente.ID)

	code, out := doRequest(t, router, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, envelope{Result: true, Message: "Cliente eliminado"}, out)

	code, out = doRequest(t, router, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Cliente no encontrado", out.Error)
}

func TestDeleteMissingClienteSkipsDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	repo.EXPECT().FindByID(gomock.Any(), gomock.Any(), int64(999)).Return(nil, clientedomain.ErrNotFound)
	repo.EXPECT().Delete(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	router := newTestRouter(t, repo, false)
	code, out := doRequest(t, router, http.MethodDelete, "/clientes/999", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Cliente no encontrado", out.Error)
}

func TestInternalErrorsUseOperationMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	repo.EXPECT().FindByID(gomock.Any(), gomock.Any(), int64(3)).Return(nil, fmt.Errorf("dial tcp: connection refused")).Times(2)
	repo.EXPECT().ListByOwner(gomock.Any(), gomock.Any(), int64(3)).Return(nil, fmt.Errorf("dial tcp: connection refused"))

	router := newTestRouter(t, repo, false)

	code, out := doRequest(t, router, http.MethodGet, "/clientes/3", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Error al obtener el cliente", out.Error)

	code, out = doRequest(t, router, http.MethodDelete, "/clientes/3", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Error al eliminar el cliente", out.Error)

	code, out = doRequest(t, router, http.MethodGet, "/clientes?id_usuario=3", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Error al obtener los clientes", out.Error)
}
