package domain

// SignupRequest is the payload of POST /api/signup.
type SignupRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// SigninRequest is the payload of POST /api/signin.
type SigninRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// ProfileForm holds the text fields of POST /api/profile.
type ProfileForm struct {
	FullName string `form:"full_name" json:"full_name"`
	Email    string `form:"email" json:"email"`
	Phone    string `form:"phone" json:"phone"`
}

// ChatRequest is the payload of POST /api/chatbot.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ApplicationRequest is the payload of POST /api/applications.
type ApplicationRequest struct {
	CompanyName string `json:"company_name" form:"company_name"`
}

// StoryRequest is the payload of POST /api/stories.
type StoryRequest struct {
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
}

// User is the public view of an account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Identity is what a valid session resolves to.
type Identity struct {
	UserID   int
	Username string
}

// SigninResponse is returned after a successful sign-in. The session id
// travels in a cookie, not in the body.
type SigninResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
	User     User   `json:"user"`
}

// AuthStatus is the body of GET /api/auth/status.
type AuthStatus struct {
	Authenticated bool    `json:"authenticated"`
	Username      *string `json:"username"`
}
