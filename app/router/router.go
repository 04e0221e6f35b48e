package router

import (
	"net/http"
	"strings"

	"github.com/wali1264/mihangps/app/controller"
	"github.com/wali1264/mihangps/service"
)

type Controllers struct {
	Auth     *controller.AuthController
	Template *controller.TemplateController
	Client   *controller.ClientController
	Contract *controller.ContractController
	Canvas   *controller.CanvasController
	Print    *controller.PrintController
	Export   *controller.ExportController
	Report   *controller.ReportController
	Asset    *controller.AssetController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func SetupRoutes(controllers *Controllers) {
	// Ping endpoint
	http.HandleFunc("/ping", pingHandler)

	// Authentication
	http.HandleFunc("/auth/login", controllers.Auth.Login)
	http.HandleFunc("/admin/employees", controllers.Auth.ListEmployees)

	// Template blob - GET loads, PUT saves
	http.HandleFunc("/admin/template", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			controllers.Template.GetTemplate(w, r)
		} else if r.Method == http.MethodPut {
			controllers.Template.SaveTemplate(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Clients routes
	http.HandleFunc("/admin/clients", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			controllers.Client.CreateClient(w, r)
		} else if r.Method == http.MethodGet {
			controllers.Client.ListClients(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Client by ID
	http.HandleFunc("/admin/clients/", controllers.Client.GetClient)

	// Contracts routes - print and export must be matched before the
	// generic /:id route
	http.HandleFunc("/admin/contracts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			controllers.Contract.CreateContract(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	http.HandleFunc("/admin/contracts/print", controllers.Print.Print)
	http.HandleFunc("/admin/contracts/export", controllers.Export.Export)
	http.HandleFunc("/admin/contracts/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/admin/contracts/")
		if path == "print" || path == "export" {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		controllers.Contract.GetContract(w, r)
	})

	// Canvas sessions
	http.HandleFunc("/admin/canvas/sessions", controllers.Canvas.OpenSession)
	http.HandleFunc("/admin/canvas/sessions/", func(w http.ResponseWriter, r *http.Request) {
		// Event posts go to /admin/canvas/sessions/:id/events
		if strings.HasSuffix(r.URL.Path, "/events") {
			controllers.Canvas.ApplyEvent(w, r)
			return
		}
		if r.Method == http.MethodGet {
			controllers.Canvas.GetSession(w, r)
			return
		}
		if r.Method == http.MethodDelete {
			controllers.Canvas.CloseSession(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// Reports routes
	http.HandleFunc("/admin/reports/contracts", controllers.Report.ListContracts)
	http.HandleFunc("/admin/reports/csv", controllers.Report.ExportCSV)

	// In-memory blob handles used by the print and export pipelines
	http.HandleFunc(service.HandleBasePath, controllers.Asset.ServeBlob)
}
