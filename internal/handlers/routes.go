// internal/handlers/routes.go
package handlers

import "net/http"

const apiPrefix = "/api/v1"

// Routes groups the handlers served by the API
type Routes struct {
	Purchases *PurchaseHandler
	Products  *ProductHandler
	Reports   *ReportHandler
	Exports   *ExportHandler
	Imports   *ImportHandler
	Health    *HealthHandler
}

// Register mounts every route on mux
func (rt *Routes) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", rt.Health.Health)
	mux.HandleFunc("GET /health/live", rt.Health.Liveness)
	mux.HandleFunc("GET /health/ready", rt.Health.Readiness)

	mux.HandleFunc("GET "+apiPrefix+"/purchases", rt.Purchases.ListPurchases)
	mux.HandleFunc("POST "+apiPrefix+"/purchases", rt.Purchases.CreatePurchase)
	mux.HandleFunc("POST "+apiPrefix+"/purchases/import", rt.Imports.ImportReceipt)
	mux.HandleFunc("GET "+apiPrefix+"/purchases/{id}", rt.Purchases.GetPurchase)
	mux.HandleFunc("PUT "+apiPrefix+"/purchases/{id}", rt.Purchases.UpdatePurchase)
	mux.HandleFunc("DELETE "+apiPrefix+"/purchases/{id}", rt.Purchases.DeletePurchase)

	mux.HandleFunc("GET "+apiPrefix+"/products", rt.Products.ListProducts)
	mux.HandleFunc("POST "+apiPrefix+"/products", rt.Products.CreateProduct)
	mux.HandleFunc("GET "+apiPrefix+"/products/search", rt.Products.SearchProducts)
	mux.HandleFunc("GET "+apiPrefix+"/products/expiring", rt.Products.ExpiringProducts)
	mux.HandleFunc("POST "+apiPrefix+"/products/import", rt.Imports.ImportProducts)
	mux.HandleFunc("GET "+apiPrefix+"/products/{id}", rt.Products.GetProduct)
	mux.HandleFunc("PUT "+apiPrefix+"/products/{id}", rt.Products.UpdateProduct)
	mux.HandleFunc("DELETE "+apiPrefix+"/products/{id}", rt.Products.DeleteProduct)

	mux.HandleFunc("GET "+apiPrefix+"/reports/sales", rt.Reports.SalesReport)
	mux.HandleFunc("GET "+apiPrefix+"/reports/sales/export", rt.Exports.ExportSales)
	mux.HandleFunc("GET "+apiPrefix+"/dashboard", rt.Reports.GetDashboard)

	mux.HandleFunc("GET "+apiPrefix+"/jobs/{id}", rt.Imports.GetJob)
}
