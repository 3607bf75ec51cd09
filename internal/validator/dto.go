package validator

// SignUpRequest registers a new account. The index number is optional; when
// present it must be well-formed and on the authorized list.
type SignUpRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=50"`
	Email       string  `json:"email" validate:"required,email,max=255"`
	Password    string  `json:"password" validate:"required,min=8"`
	IndexNumber *string `json:"indexNumber" validate:"omitempty,index_format,index_authorized"`
}

// SignInRequest authenticates by email or index number plus password. The
// either-or requirement is enforced by ValidateSignIn.
type SignInRequest struct {
	Email       string `json:"email" validate:"omitempty,email"`
	IndexNumber string `json:"indexNumber" validate:"omitempty,index_format"`
	Password    string `json:"password" validate:"required,min=8"`
}

// CreateAdminRequest bootstraps an admin account. The index number must be
// well-formed but is deliberately not checked against the allowlist on this
// path.
type CreateAdminRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8"`
	IndexNumber string `json:"indexNumber" validate:"required,index_format"`
	SecretKey   string `json:"secretKey" validate:"required"`
}

// SubmitProjectRequest carries the non-file fields of a multipart project
// submission. Attachments are validated separately by the handler.
type SubmitProjectRequest struct {
	Name        string `form:"name" json:"name" validate:"required,min=2,max=100"`
	Description string `form:"description" json:"description" validate:"required,min=10"`
	Department  string `form:"department" json:"department" validate:"required"`
}

// DecisionRequest carries the admin's feedback message on approve/reject.
type DecisionRequest struct {
	Message string `json:"message" validate:"omitempty,max=1000"`
}
