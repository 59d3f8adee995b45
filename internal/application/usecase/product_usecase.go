package usecase

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/malexa-pos/internal/application/dto"
	"github.com/jhoicas/malexa-pos/internal/domain"
	"github.com/jhoicas/malexa-pos/internal/domain/entity"
	"github.com/jhoicas/malexa-pos/internal/domain/pricing"
	"github.com/jhoicas/malexa-pos/internal/domain/repository"
)

// ProductReader lecturas del catálogo en memoria (catalog.Snapshot).
type ProductReader interface {
	Products() []*entity.Product
	FindProduct(id int64) (*entity.Product, bool)
	ReloadProducts(ctx context.Context) error
}

// ProductUseCase ABM del catálogo. El stock solo lo descuenta el checkout; acá se carga a mano.
type ProductUseCase struct {
	repo   repository.ProductRepository
	reader ProductReader
	ids    *entity.IDGenerator
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, reader ProductReader, ids *entity.IDGenerator) *ProductUseCase {
	if ids == nil {
		ids = entity.NewIDGenerator(nil)
	}
	return &ProductUseCase{repo: repo, reader: reader, ids: ids}
}

// List lista el catálogo con las opciones de compra de cada producto.
func (uc *ProductUseCase) List() *dto.ProductListResponse {
	products := uc.reader.Products()
	items := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{Items: items}
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(id int64) (*dto.ProductResponse, error) {
	p, ok := uc.reader.FindProduct(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(p), nil
}

// PricingOptions opciones de compra vigentes del producto.
func (uc *ProductUseCase) PricingOptions(id int64) ([]dto.PricingOptionResponse, error) {
	p, ok := uc.reader.FindProduct(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return toOptionResponses(pricing.Options(p)), nil
}

// Create agrega un producto al catálogo.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.ProductRequest) (*dto.ProductResponse, error) {
	product, err := productFromRequest(in)
	if err != nil {
		return nil, err
	}
	product.ID = uc.ids.Next()

	err = uc.mutate(ctx, func(c *entity.Catalog) error {
		for c.Find(product.ID) != nil {
			product.ID = uc.ids.Next()
		}
		c.Products = append(c.Products, product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Update reemplaza los datos de un producto existente.
func (uc *ProductUseCase) Update(ctx context.Context, id int64, in dto.ProductRequest) (*dto.ProductResponse, error) {
	product, err := productFromRequest(in)
	if err != nil {
		return nil, err
	}
	product.ID = id

	err = uc.mutate(ctx, func(c *entity.Catalog) error {
		for i, p := range c.Products {
			if p.ID == id {
				c.Products[i] = product
				return nil
			}
		}
		return domain.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Delete elimina un producto. Las ventas ya registradas conservan su copia.
func (uc *ProductUseCase) Delete(ctx context.Context, id int64) error {
	return uc.mutate(ctx, func(c *entity.Catalog) error {
		for i, p := range c.Products {
			if p.ID == id {
				c.Products = append(c.Products[:i], c.Products[i+1:]...)
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

// mutate lee el catálogo, aplica fn y lo guarda con control de revisión. Después refresca
// la copia en memoria para que la próxima lectura vea el cambio.
func (uc *ProductUseCase) mutate(ctx context.Context, fn func(*entity.Catalog) error) error {
	c, err := uc.repo.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		return err
	}
	if err := uc.repo.Save(ctx, c); err != nil {
		return err
	}
	return uc.reader.ReloadProducts(ctx)
}

func productFromRequest(in dto.ProductRequest) (*entity.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "el nombre es obligatorio")
	}
	if in.Quantity < 0 {
		return nil, domain.NewValidationError("quantity", "la cantidad no puede ser negativa")
	}
	comboMax := in.ComboMax
	if comboMax == 0 {
		comboMax = entity.MinComboTier
	}
	if comboMax < entity.MinComboTier || comboMax > entity.MaxComboTier {
		return nil, domain.NewValidationError("combo_max", "el combo máximo debe estar entre %d y %d", entity.MinComboTier, entity.MaxComboTier)
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return nil, domain.NewValidationError("unit_price", "el precio por unidad no puede ser negativo")
	}

	p := &entity.Product{
		Name:        name,
		Quantity:    in.Quantity,
		ComboMax:    comboMax,
		ComboPrices: make(map[int]decimal.Decimal),
	}
	if in.UnitPrice != nil {
		u := *in.UnitPrice
		p.UnitPrice = &u
	}
	for n := entity.MinComboTier; n <= comboMax; n++ {
		price := in.ComboPrice(n)
		if price == nil {
			continue
		}
		if price.IsNegative() {
			return nil, domain.NewValidationError(string(pricing.ComboType(n)), "el precio del combo %dx no puede ser negativo", n)
		}
		p.ComboPrices[n] = *price
	}
	return p, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	out := &dto.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Quantity:  p.Quantity,
		UnitPrice: p.UnitPrice,
		ComboMax:  p.ComboMax,
		Options:   toOptionResponses(pricing.Options(p)),
	}
	tiers := []**decimal.Decimal{&out.Combo2, &out.Combo3, &out.Combo4, &out.Combo5}
	for i, dst := range tiers {
		if d, ok := p.ComboPrice(entity.MinComboTier + i); ok {
			*dst = &d
		}
	}
	return out
}

func toOptionResponses(opts []pricing.Option) []dto.PricingOptionResponse {
	out := make([]dto.PricingOptionResponse, 0, len(opts))
	for _, o := range opts {
		out = append(out, dto.PricingOptionResponse{
			Value:        string(o.Value),
			Label:        o.Label,
			PackSize:     o.PackSize,
			PricePerPack: o.PricePerPack,
		})
	}
	return out
}
