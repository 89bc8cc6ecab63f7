package api

import (
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"ledger_service/internal/middleware"
)

// Authorizer is the authentication surface the router needs
type Authorizer interface {
	Authenticator
	middleware.TokenResolver
	middleware.AdminChecker
}

// Deps are the services behind the HTTP routes
type Deps struct {
	Auth           Authorizer        // Login, bearer tokens and role checks
	Users          UserStore         // Credential store
	Accounts       AccountReader     // Account listings
	Transactions   TransactionReader // Transaction history
	Payments       PaymentProcessor  // Signed payment processing
	Events         EventPublisher    // Optional, may be nil
	TrustedProxies []string          // Proxies allowed to set X-Forwarded-For
}

var registerTagNames sync.Once

// NewRouter builds the gin engine with every route of the service
func NewRouter(d Deps) (*gin.Engine, error) {
	registerTagNames.Do(useWireFieldNames)

	r := gin.New()
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authn := middleware.JWTAuthMiddleware(d.Auth)
	adminOnly := middleware.AdminOnlyMiddleware(d.Auth)

	// User routes
	r.POST("/user/login", LoginHandler(d.Auth)) // Login endpoint
	users := r.Group("/user", authn)
	users.GET("/user", CurrentUserHandler()) // Current user endpoint
	usersAdmin := users.Group("/admin", adminOnly)
	usersAdmin.GET("/user_info/:user_id", GetUserHandler(d.Users))          // Single user endpoint
	usersAdmin.POST("/add_user", AddUserHandler(d.Users, d.Events))         // Create user endpoint
	usersAdmin.DELETE("/delete_user", DeleteUserHandler(d.Users, d.Events)) // Delete user endpoint
	usersAdmin.GET("/get_all_users", ListUsersHandler(d.Users))             // List users endpoint

	// Account routes
	accounts := r.Group("/account", authn)
	accounts.GET("/my_account_info", MyAccountsHandler(d.Accounts)) // Caller accounts endpoint
	accountsAdmin := accounts.Group("/admin", adminOnly)
	accountsAdmin.GET("/user_account_info/:user_id", UserAccountsHandler(d.Accounts)) // User accounts endpoint
	accountsAdmin.GET("/get_all_accounts", ListAccountsHandler(d.Accounts))           // List accounts endpoint

	// Transaction routes
	transactions := r.Group("/transaction", authn)
	transactions.GET("/transactions_info", MyTransactionsHandler(d.Transactions)) // Caller history endpoint
	transactions.POST("/make_transaction", MakeTransactionHandler(d.Payments))    // Payment endpoint
	transactionsAdmin := transactions.Group("/admin", adminOnly)
	transactionsAdmin.GET("/user_transactions_info", UserTransactionsHandler(d.Transactions)) // User history endpoint
	transactionsAdmin.GET("/get_all_transactions", ListTransactionsHandler(d.Transactions))   // List transactions endpoint

	return r, nil
}

// useWireFieldNames makes validation errors report json/form names instead of Go field names
func useWireFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
}
