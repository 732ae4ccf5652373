package validator

const (
	usernameLengthMessage  = "Username Should be atleast 5 character"
	usernamePatternMessage = "Invalid username"
	emailMessage           = "enter a valid email"
	passwordLengthMessage  = "password Should be atleast 5 character"
)

// SignInInput is the candidate account credentials object
type SignInInput struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Role     *string `json:"role,omitempty"`
}

// SignInResult is either a validated value or a list of field errors
type SignInResult struct {
	Value  *SignInInput
	Errors []FieldError
}

// Valid reports whether validation succeeded
func (r SignInResult) Valid() bool {
	return r.Value != nil && len(r.Errors) == 0
}

// MessagesFor returns the messages reported for one field
func (r SignInResult) MessagesFor(field string) []string {
	var msgs []string
	for _, e := range r.Errors {
		if e.Field == field {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

type signInRule struct {
	field   string
	value   func(*SignInInput) string
	tag     string
	message string
}

// Every rule runs on its own; the username length and character rules
// overlap but are both required.
var signInRules = []signInRule{
	{"username", usernameOf, "min=5,max=15", usernameLengthMessage},
	{"username", usernameOf, "username", usernamePatternMessage},
	{"email", func(in *SignInInput) string { return in.Email }, "email", emailMessage},
	{"password", func(in *SignInInput) string { return in.Password }, "min=5", passwordLengthMessage},
}

func usernameOf(in *SignInInput) string { return in.Username }

// ValidateSignIn validates candidate credentials. Role is optional and unconstrained.
func ValidateSignIn(in SignInInput) SignInResult {
	var errs []FieldError
	for _, rule := range signInRules {
		if !Var(rule.value(&in), rule.tag) {
			errs = append(errs, FieldError{Field: rule.field, Message: rule.message})
		}
	}

	if len(errs) > 0 {
		return SignInResult{Errors: errs}
	}

	value := in
	return SignInResult{Value: &value}
}
