package router

import (
	"github.com/wms/backend/internal/interfaces/http/handler"
	"github.com/wms/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every handler mounted under /api/v1
type Handlers struct {
	Auth             *handler.AuthHandler
	User             *handler.UserHandler
	Branch           *handler.BranchHandler
	Parcel           *handler.ParcelHandler
	Dispatch         *handler.DispatchHandler
	ContractCustomer *handler.ContractCustomerHandler
	Invoice          *handler.InvoiceHandler
	BranchDeposit    *handler.BranchDepositHandler
	ParcelDeposit    *handler.ParcelDepositHandler
	Payment          *handler.PaymentHandler
	Expense          *handler.ExpenseHandler
	Report           *handler.ReportHandler
	System           *handler.SystemHandler
}

var (
	adminOnly       = middleware.RequireRoles(middleware.AdminOnly...)
	managers        = middleware.RequireRoles(middleware.Managers...)
	financeStaff    = middleware.RequireRoles(middleware.FinanceStaff...)
	parcelWriters   = middleware.RequireRoles(middleware.ParcelWriters...)
	expenseDeciders = middleware.RequireRoles(middleware.ExpenseDeciders...)
	staff           = middleware.RequireRoles(middleware.Staff...)
)

// APIGroups builds the domain route groups. Authentication is expected to
// run before them, at Router level; the groups only check roles.
func APIGroups(h Handlers) []RouteRegistrar {
	system := NewDomainGroup("system", "")
	system.GET("/health", h.System.Health)

	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.RefreshToken)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.GetCurrentUser)
	auth.PUT("/password", h.Auth.ChangePassword)

	users := NewDomainGroup("users", "/users").Use(adminOnly)
	users.GET("", h.User.List)
	users.POST("", h.User.Create)
	users.GET("/:id", h.User.GetByID)
	users.PUT("/:id", h.User.Update)
	users.DELETE("/:id", h.User.Delete)
	users.POST("/:id/activate", h.User.Activate)
	users.POST("/:id/deactivate", h.User.Deactivate)
	users.PUT("/:id/password", h.User.ResetPassword)

	branches := NewDomainGroup("branches", "/branches")
	branches.GET("", h.Branch.List)
	branches.GET("/:id", h.Branch.GetByID)
	branches.POST("", adminOnly, h.Branch.Create)
	branches.PUT("/:id", adminOnly, h.Branch.Update)
	branches.DELETE("/:id", adminOnly, h.Branch.Delete)

	parcels := NewDomainGroup("parcels", "/parcels")
	parcels.GET("", h.Parcel.List)
	parcels.GET("/count", h.Parcel.Count)
	parcels.GET("/sales", h.Parcel.Sales)
	parcels.GET("/for-dispatch", h.Parcel.ForDispatch)
	parcels.GET("/waybill/:waybill", h.Parcel.GetByWaybill)
	parcels.GET("/:id", h.Parcel.GetByID)
	parcels.POST("", parcelWriters, h.Parcel.Create)
	parcels.POST("/confirm", managers, h.Parcel.Confirm)
	parcels.PUT("/:id", parcelWriters, h.Parcel.Update)
	parcels.DELETE("/:id", parcelWriters, h.Parcel.Delete)
	parcels.PUT("/:id/status", parcelWriters, h.Parcel.ChangeStatus)
	parcels.PUT("/:id/payment", parcelWriters, h.Parcel.RecordPayment)

	dispatches := NewDomainGroup("dispatches", "/dispatches").Use(staff)
	dispatches.GET("", h.Dispatch.List)
	dispatches.GET("/:id", h.Dispatch.GetByID)
	dispatches.GET("/:id/note", h.Dispatch.Note)
	dispatches.POST("", managers, h.Dispatch.Create)
	dispatches.PUT("/:id/status", managers, h.Dispatch.ChangeStatus)

	customers := NewDomainGroup("contract-customers", "/contract-customers").Use(staff)
	customers.GET("", h.ContractCustomer.List)
	customers.GET("/:id", h.ContractCustomer.GetByID)
	customers.GET("/:id/invoices", financeStaff, h.ContractCustomer.Invoices)
	customers.POST("", financeStaff, h.ContractCustomer.Create)
	customers.PUT("/:id", financeStaff, h.ContractCustomer.Update)
	customers.DELETE("/:id", financeStaff, h.ContractCustomer.Delete)

	invoices := NewDomainGroup("invoices", "/invoices").Use(financeStaff)
	invoices.GET("", h.Invoice.List)
	invoices.GET("/unbilled-parcels", h.Invoice.UnbilledParcels)
	invoices.GET("/customer/:customerId", h.Invoice.ByCustomer)
	invoices.GET("/:id", h.Invoice.GetByID)
	invoices.GET("/:id/pdf", h.Invoice.PDF)
	invoices.POST("", h.Invoice.Create)
	invoices.PUT("/:id", h.Invoice.Update)
	invoices.DELETE("/:id", h.Invoice.Delete)
	invoices.POST("/:id/items", h.Invoice.AddItems)
	invoices.DELETE("/:id/items/:itemId", h.Invoice.RemoveItem)
	invoices.POST("/:id/send", h.Invoice.Send)
	invoices.POST("/:id/payment", h.Invoice.RecordPayment)
	invoices.POST("/:id/cancel", h.Invoice.Cancel)

	branchDeposits := NewDomainGroup("branch-deposits", "/branch-deposits").Use(financeStaff)
	branchDeposits.GET("", h.BranchDeposit.List)
	branchDeposits.GET("/summary", h.BranchDeposit.Summary)
	branchDeposits.GET("/:id", h.BranchDeposit.GetByID)
	branchDeposits.POST("", h.BranchDeposit.Create)
	branchDeposits.PUT("/:id", h.BranchDeposit.Update)
	branchDeposits.DELETE("/:id", h.BranchDeposit.Delete)
	branchDeposits.POST("/recalculate", adminOnly, h.BranchDeposit.Recalculate)

	parcelDeposits := NewDomainGroup("parcel-deposits", "/parcel-deposits").Use(staff)
	parcelDeposits.GET("", h.ParcelDeposit.List)
	parcelDeposits.GET("/clerk-summary", h.ParcelDeposit.ClerkSummaries)
	parcelDeposits.GET("/clerk-summary/user/:userId", h.ParcelDeposit.ClerkWindow)
	parcelDeposits.GET("/parcel/:parcelId", h.ParcelDeposit.GetByParcel)
	parcelDeposits.PUT("/parcel/:parcelId", h.ParcelDeposit.Upsert)
	parcelDeposits.GET("/:id", h.ParcelDeposit.GetByID)
	parcelDeposits.POST("", h.ParcelDeposit.Create)
	parcelDeposits.PUT("/:id", h.ParcelDeposit.Update)
	parcelDeposits.DELETE("/:id", h.ParcelDeposit.Delete)

	payments := NewDomainGroup("payments", "/payments").Use(financeStaff)
	payments.GET("/summary", h.Payment.Summary)
	cod := payments.Group("cod", "/cod")
	cod.GET("", h.Payment.ListCOD)
	cod.POST("", h.Payment.CreateCOD)
	cod.GET("/:id", h.Payment.GetCOD)
	cod.PUT("/:id", h.Payment.UpdateCOD)
	cheques := payments.Group("cheques", "/cheques")
	cheques.GET("", h.Payment.ListCheques)
	cheques.POST("", h.Payment.CreateCheque)
	cheques.GET("/:id", h.Payment.GetCheque)
	cheques.PUT("/:id", h.Payment.UpdateCheque)

	expenses := NewDomainGroup("expenses", "/expenses").Use(staff)
	expenses.GET("", h.Expense.List)
	expenses.GET("/pending", h.Expense.Pending)
	expenses.GET("/summary", h.Expense.Summary)
	expenses.POST("", h.Expense.Create)
	expenses.POST("/approve", expenseDeciders, h.Expense.Decide)
	expenses.GET("/:id", h.Expense.GetByID)
	expenses.PUT("/:id", h.Expense.Update)
	expenses.DELETE("/:id", h.Expense.Delete)
	expenses.POST("/:id/receipt", h.Expense.UploadReceipt)
	expenses.GET("/:id/receipt", h.Expense.ReceiptURL)

	reports := NewDomainGroup("reports", "/reports").Use(financeStaff)
	reports.GET("/daily", h.Report.Daily)
	reports.POST("/daily/archive", adminOnly, h.Report.Archive)
	reports.GET("/jobs", adminOnly, h.Report.Jobs)
	reports.POST("/jobs/:name/run", adminOnly, h.Report.RunJob)

	return []RouteRegistrar{
		system, auth, users, branches,
		parcels, dispatches,
		customers, invoices,
		branchDeposits, parcelDeposits, payments, expenses,
		reports,
	}
}
