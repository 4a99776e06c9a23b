package domain

// Credentials are the one-time login details handed to a new vendor.
type Credentials struct {
	LoginID  string
	Password string
}

// MailMessage is a rendered message ready for a transport.
type MailMessage struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html"`
}
