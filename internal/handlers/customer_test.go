package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelmerpassos/ipet-api/pkg/models"
)

type fakeCustomerRepo struct {
	byID    map[int64]*models.Customer
	byCPF   map[int64]*models.Customer
	nextID  int64
	deleted []int64
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{
		byID:   map[int64]*models.Customer{},
		byCPF:  map[int64]*models.Customer{},
		nextID: 1,
	}
}

func (f *fakeCustomerRepo) Create(_ context.Context, c *models.Customer) (*models.Customer, error) {
	c.ID = f.nextID
	f.nextID++
	f.byID[c.ID] = c
	f.byCPF[c.CPF] = c
	return c, nil
}

func (f *fakeCustomerRepo) GetByID(_ context.Context, id int64) (*models.Customer, error) {
	return f.byID[id], nil
}

func (f *fakeCustomerRepo) GetByCPF(_ context.Context, cpf int64) (*models.Customer, error) {
	return f.byCPF[cpf], nil
}

func (f *fakeCustomerRepo) List(_ context.Context, fullName string, page, perPage int) ([]*models.Customer, int, error) {
	var all []*models.Customer
	for _, c := range f.byID {
		if fullName == "" || strings.Contains(strings.ToLower(c.FullName), strings.ToLower(fullName)) {
			all = append(all, c)
		}
	}
	return all, len(all), nil
}

func (f *fakeCustomerRepo) Update(_ context.Context, c *models.Customer) (*models.Customer, error) {
	if _, ok := f.byID[c.ID]; !ok {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "customer not found")
	}
	f.byID[c.ID] = c
	return c, nil
}

func (f *fakeCustomerRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return httperror.NewHTTPError(http.StatusNotFound, "customer not found")
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func newJSONContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestCustomerCreate(t *testing.T) {
	repo := newFakeCustomerRepo()
	h := NewCustomerHandler(repo)

	c, rec := newJSONContext(t, http.MethodPost, "/customers",
		`{"cpf": "12345678900", "fullName": "Maria Silva", "address": "Rua A, 1"}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created models.Customer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "Maria Silva", created.FullName)
	assert.NotContains(t, rec.Body.String(), "12345678900", "cpf must not be serialized")
}

func TestCustomerCreateDuplicateCPF(t *testing.T) {
	repo := newFakeCustomerRepo()
	repo.byCPF[12345678900] = &models.Customer{ID: 1, CPF: 12345678900}
	h := NewCustomerHandler(repo)

	c, _ := newJSONContext(t, http.MethodPost, "/customers",
		`{"cpf": "12345678900", "fullName": "Maria Silva", "address": "Rua A, 1"}`)

	err := h.Create(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))
}

func TestCustomerCreateValidation(t *testing.T) {
	h := NewCustomerHandler(newFakeCustomerRepo())

	cases := []string{
		`{"fullName": "Maria", "address": "Rua A"}`,     // missing cpf
		`{"cpf": "123", "fullName": "M", "address": "A"}`, // short cpf
		`{"cpf": "12345678900", "address": "Rua A"}`,    // missing name
	}
	for _, body := range cases {
		c, _ := newJSONContext(t, http.MethodPost, "/customers", body)
		err := h.Create(c)
		require.Error(t, err, "body %s", body)
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	}
}

func TestCustomerGetNotFound(t *testing.T) {
	h := NewCustomerHandler(newFakeCustomerRepo())

	c, _ := newJSONContext(t, http.MethodGet, "/customers/99", "")
	c.SetParamNames("id")
	c.SetParamValues("99")

	err := h.Get(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
}

func TestCustomerUpdate(t *testing.T) {
	repo := newFakeCustomerRepo()
	repo.byID[1] = &models.Customer{ID: 1, FullName: "Maria Silva", Address: "Rua A, 1"}
	h := NewCustomerHandler(repo)

	c, rec := newJSONContext(t, http.MethodPatch, "/customers/1", `{"address": "Rua B, 2"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Rua B, 2", repo.byID[1].Address)
	assert.Equal(t, "Maria Silva", repo.byID[1].FullName, "unset fields stay untouched")
}

func TestCustomerDelete(t *testing.T) {
	repo := newFakeCustomerRepo()
	repo.byID[1] = &models.Customer{ID: 1}
	h := NewCustomerHandler(repo)

	c, rec := newJSONContext(t, http.MethodDelete, "/customers/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []int64{1}, repo.deleted)
}

func TestCustomerList(t *testing.T) {
	repo := newFakeCustomerRepo()
	repo.byID[1] = &models.Customer{ID: 1, FullName: "Maria Silva"}
	h := NewCustomerHandler(repo)

	c, rec := newJSONContext(t, http.MethodGet, "/customers?page=1&per_page=20", "")

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.CurrentPage)
	assert.Equal(t, 1, resp.TotalItems)
}
