package codegen

import "strings"

// ServiceIntegration describes a known external service and the text the
// backends weave into its call stub. The fields are language-neutral;
// each backend renders them with its own syntax.
type ServiceIntegration struct {
	Name     string   // display name: SendGrid
	Kind     string   // integration kind: email, sms, database
	Aliases  []string // registry keys, lowercase
	Comment  string   // stub heading: "SendGrid email service call"
	Activity string   // log line: "Sending email via SendGrid"
	Todo     string   // followup note inside the stub
	CallName string   // stub function, snake_case: "send_email_sendgrid"
	ResultV  string   // result binding where the target needs one
	Failure  string   // failure message: "Failed to send email"
}

var (
	sendgridService = ServiceIntegration{
		Name:     "SendGrid",
		Kind:     "email",
		Aliases:  []string{"sendgrid"},
		Comment:  "SendGrid email service call",
		Activity: "Sending email via SendGrid",
		Todo:     "Implement actual SendGrid API call",
		CallName: "send_email_sendgrid",
		ResultV:  "email_result",
		Failure:  "Failed to send email",
	}

	twilioService = ServiceIntegration{
		Name:     "Twilio",
		Kind:     "sms",
		Aliases:  []string{"twilio"},
		Comment:  "Twilio SMS service call",
		Activity: "Sending SMS via Twilio",
		Todo:     "Implement actual Twilio API call",
		CallName: "send_sms_twilio",
		ResultV:  "sms_result",
		Failure:  "Failed to send SMS",
	}

	postgresService = ServiceIntegration{
		Name:     "PostgreSQL",
		Kind:     "database",
		Aliases:  []string{"postgresql", "postgres"},
		Comment:  "PostgreSQL database operation",
		Activity: "Executing database operation",
		Todo:     "Implement actual database operation",
		CallName: "execute_postgres_query",
		ResultV:  "db_result",
		Failure:  "Database operation failed",
	}
)

// serviceRegistry maps lowercase service names to their integrations.
// The registry is fixed at build time; unknown services degrade to a
// warning in the generated output, never an error.
var serviceRegistry = buildServiceRegistry()

func buildServiceRegistry() map[string]ServiceIntegration {
	reg := make(map[string]ServiceIntegration)
	for _, svc := range RegisteredServices() {
		for _, alias := range svc.Aliases {
			reg[alias] = svc
		}
	}
	return reg
}

// LookupService resolves a service name case-insensitively.
func LookupService(name string) (ServiceIntegration, bool) {
	svc, ok := serviceRegistry[strings.ToLower(name)]
	return svc, ok
}

// RegisteredServices returns the known integrations in a fixed order.
func RegisteredServices() []ServiceIntegration {
	return []ServiceIntegration{sendgridService, twilioService, postgresService}
}
