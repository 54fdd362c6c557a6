package usecase_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpinedac/comercio-api/internal/application/dto"
	"github.com/jpinedac/comercio-api/internal/application/usecase"
	"github.com/jpinedac/comercio-api/internal/domain"
	"github.com/jpinedac/comercio-api/internal/domain/entity"
	"github.com/jpinedac/comercio-api/internal/domain/repository"
)

// stubProductRepo captura la query normalizada que recibe Search.
type stubProductRepo struct {
	bySKU       map[string]*entity.Product
	created     []*entity.Product
	searchedFor string
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func (r *stubProductRepo) Create(p *entity.Product) error {
	r.created = append(r.created, p)
	return nil
}

func (r *stubProductRepo) GetByID(id string) (*entity.Product, error) { return nil, nil }

func (r *stubProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	return r.bySKU[sku], nil
}

func (r *stubProductRepo) Update(p *entity.Product) error { return nil }

func (r *stubProductRepo) List(limit, offset int) ([]*entity.Product, error) { return nil, nil }

func (r *stubProductRepo) Search(normalizedQuery string, limit, offset int) ([]*entity.Product, error) {
	r.searchedFor = normalizedQuery
	return nil, nil
}

func (r *stubProductRepo) Delete(id string) error { return nil }

// La búsqueda normaliza acentos y mayúsculas antes de llegar al repositorio:
// "Azúcar" y "AZUCAR" consultan lo mismo.
func TestProductSearch_NormalizaAcentos(t *testing.T) {
	cases := map[string]string{
		"Azúcar":        "azucar",
		"AZUCAR":        "azucar",
		"  Café Molido": "cafe molido",
		"niño":          "nino",
	}
	for input, want := range cases {
		repo := &stubProductRepo{}
		uc := usecase.NewProductUseCase(repo)
		_, err := uc.Search(input, dto.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, want, repo.searchedFor, "query %q", input)
	}
}

func TestProductCreate_SKUDuplicado(t *testing.T) {
	repo := &stubProductRepo{bySKU: map[string]*entity.Product{
		"SKU-1": {ID: "p1", SKU: "SKU-1"},
	}}
	uc := usecase.NewProductUseCase(repo)

	_, err := uc.Create(dto.ProductRequest{SKU: "SKU-1", Name: "Repetido", Price: decimal.NewFromInt(10)})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
	assert.Empty(t, repo.created)
}

func TestProductCreate_Valido(t *testing.T) {
	repo := &stubProductRepo{}
	uc := usecase.NewProductUseCase(repo)

	out, err := uc.Create(dto.ProductRequest{SKU: "SKU-9", Name: "Nuevo", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.True(t, out.Active)
	require.Len(t, repo.created, 1)
}

func TestProductCreate_EntradaInvalida(t *testing.T) {
	uc := usecase.NewProductUseCase(&stubProductRepo{})

	_, err := uc.Create(dto.ProductRequest{SKU: "", Name: "Sin SKU", Price: decimal.NewFromInt(1)})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Create(dto.ProductRequest{SKU: "S", Name: "Precio negativo", Price: decimal.NewFromInt(-1)})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
