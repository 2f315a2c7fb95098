package handler

const (
	errInternalServer = "Internal server error"
	errValidation     = "Validation failed"
	errTokenInvalid   = "Token is invalid or expired"

	errInvalidCredentials      = "Invalid login credentials"
	errEmailTaken              = "User already registered"
	errInviteCodeInvalid       = "Invalid or expired invite code"
	errInviteCodeNoLongerValid = "Invite code is no longer valid"
	errAdminActivationFailed   = "Failed to activate admin privileges"
	errUnsupportedGrantType    = "Unsupported grant_type"
	errUnsupportedVerifyType   = "Unsupported verification type"
	errCurrentPasswordWrong    = "Current password is incorrect"
	errInvalidRole             = "Invalid role"

	errInviteCodeNotFound  = "Invite code not found"
	errInvalidInviteExpiry = "Expiry must be between 1 and 365 days"

	errContentNotFound    = "Not found"
	errMessageNotFound    = "Message not found"
	errSubscriberNotFound = "Subscriber not found"
	errSettingNotFound    = "Setting not found"
	errAlreadySubscribed  = "Already subscribed"

	errFileRequired    = "A file is required"
	errNotPDF          = "Please upload a PDF file"
	errNotImage        = "Please upload a JPEG, PNG, WebP or GIF image"
	errResumeTooLarge  = "File size must be less than 10MB"
	errImageTooLarge   = "File size must be less than 5MB"
	errResumeNotFound  = "Resume not found"
	errProjectNotFound = "Project not found"

	errAIRateLimited      = "Rate limit exceeded. Please try again later."
	errAICreditsExhausted = "AI credits exhausted. Please add credits."
)
