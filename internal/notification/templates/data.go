package templates

// VerifyEmailData holds variables for the user.verify_email scenario.
type VerifyEmailData struct {
	Name         string
	VerifyURL    string
	SupportEmail string
}

// VerifyEmail is the typed handle for the user.verify_email template.
var VerifyEmail = Expect[VerifyEmailData]("user.verify_email")

// VerifySuccessData holds variables for the post-verification notification.
type VerifySuccessData struct {
	Name     string
	LoginURL string
}

// VerifySuccess is the typed handle for the user.verify_success template.
var VerifySuccess = Expect[VerifySuccessData]("user.verify_success")

// PasswordResetData holds variables for the password reset link email.
type PasswordResetData struct {
	Name         string
	ResetURL     string
	SupportEmail string
}

// PasswordReset is the typed handle for the user.password_reset template.
var PasswordReset = Expect[PasswordResetData]("user.password_reset")

// PasswordResetDoneData holds variables for the reset confirmation notice.
type PasswordResetDoneData struct {
	Name string
}

// PasswordResetDone is the typed handle for the user.password_reset_done template.
var PasswordResetDone = Expect[PasswordResetDoneData]("user.password_reset_done")

// PaymentConfirmationData holds variables for the subscription payment receipt.
type PaymentConfirmationData struct {
	Name     string
	PlanName string
	Amount   string
	Currency string
	EndDate  string
}

// PaymentConfirmation is the typed handle for the billing.payment_confirmation template.
var PaymentConfirmation = Expect[PaymentConfirmationData]("billing.payment_confirmation")
