package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/healthrec/engine/internal/telemetry/tracing"
	"github.com/healthrec/engine/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=notify

type emailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type faqEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

var faqEntries = []faqEntry{
	{
		Question: "Where does my health data come from?",
		Answer:   "From your connected fitness provider. Run a sync from the dashboard, or add metrics manually.",
	},
	{
		Question: "Why do some days show zero values?",
		Answer:   "A zero means no data was recorded for that day. Synced days keep whatever was already stored for metrics the provider did not report.",
	},
	{
		Question: "Can I export my data?",
		Answer:   "Yes, the export endpoint returns all of your records as CSV or JSON.",
	},
	{
		Question: "How do I delete my account?",
		Answer:   "Request deletion in your profile settings. The account and all health data are removed after a 30 day grace period, and you can cancel any time before that.",
	},
}

type Handler struct {
	sender       emailSender
	supportEmail string
}

func NewHandler(sender emailSender, supportEmail string) *Handler {
	return &Handler{
		sender:       sender,
		supportEmail: supportEmail,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	supportSubrouter := mainRouter.PathPrefix("/support").Subrouter()
	supportSubrouter.
		HandleFunc("/contact", handler.handleContact).
		Methods("POST", "OPTIONS").Name("support-contact")
	supportSubrouter.
		HandleFunc("/faq", handler.handleFaq).
		Methods("GET", "OPTIONS").Name("support-faq")
}

func (handler *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "notifyHandler.contact")
	defer span.End()

	type contactRequest struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}

	var contactReq contactRequest
	if err := json.NewDecoder(r.Body).Decode(&contactReq); err != nil {
		log.Errorf("support contact, unmarshal json params: %s", err)
		http.Error(w, "contact failed", http.StatusBadRequest)
		return
	}

	if contactReq.Name == "" || contactReq.Email == "" || contactReq.Message == "" {
		http.Error(w, "error, all fields are required", http.StatusBadRequest)
		return
	}

	subject := fmt.Sprintf("Support Request from %s", contactReq.Name)
	body := fmt.Sprintf("%s\n\nReply to: %s", contactReq.Message, contactReq.Email)
	if err := handler.sender.Send(ctx, handler.supportEmail, subject, body); err != nil {
		log.Errorf("support contact, send mail: %s", err)
		http.Error(w, "contact failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"message": "Message sent successfully"}`)
}

func (handler *Handler) handleFaq(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "notifyHandler.faq")
	defer span.End()

	faqJson, err := json.Marshal(faqEntries)
	if err != nil {
		log.Errorf("marshal faq entries: %s", err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, faqJson)
}
