package handlers

import (
	"github.com/jmoiron/sqlx"

	"vinyltech/internal/config"
	"vinyltech/internal/media"
	"vinyltech/internal/repos"
	"vinyltech/internal/services"
)

type Deps struct {
	PageHandler     *PageHandler
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	AuthHandler     *AuthHandler
	AdminHandler    *AdminHandler

	Account *services.AccountService
}

func NewDeps(db *sqlx.DB, cfg config.Config, mediaStore *media.Store) *Deps {
	prodRepo := repos.NewProductRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	custRepo := repos.NewCustomerRepo(db)
	sessRepo := repos.NewSessionRepo(db)

	catalogSvc := services.NewCatalogService(prodRepo)
	cartSvc := services.NewCartService(cartRepo, prodRepo)
	checkoutSvc := services.NewCheckoutService(db, cartSvc, custRepo, orderRepo, prodRepo)
	accountSvc := services.NewAccountService(custRepo, sessRepo)
	adminSvc := services.NewAdminService(prodRepo, orderRepo)

	return &Deps{
		PageHandler:     &PageHandler{Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc, Sessions: sessRepo},
		CartHandler:     &CartHandler{Cart: cartSvc},
		CheckoutHandler: &CheckoutHandler{Cart: cartSvc, Checkout: checkoutSvc, Orders: orderRepo, Account: accountSvc, AdminEmail: cfg.AdminEmail},
		AuthHandler:     &AuthHandler{Account: accountSvc, Orders: orderRepo},
		AdminHandler:    &AdminHandler{Admin: adminSvc, Catalog: catalogSvc, Orders: orderRepo, Media: mediaStore},
		Account:         accountSvc,
	}
}
