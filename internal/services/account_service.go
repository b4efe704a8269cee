package services

import (
	"errors"

	"vinyltech/internal/domain"
	"vinyltech/internal/repos"
	"vinyltech/internal/validate"
)

type AccountService struct {
	Customers *repos.CustomerRepo
	Sessions  *repos.SessionRepo
}

func NewAccountService(customers *repos.CustomerRepo, sessions *repos.SessionRepo) *AccountService {
	return &AccountService{Customers: customers, Sessions: sessions}
}

type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

func (in SignupInput) check() error {
	fe := domain.FieldErrors{}
	if in.FirstName == "" {
		fe["first_name"] = "is required"
	}
	if in.LastName == "" {
		fe["last_name"] = "is required"
	}
	if _, ok := validate.Email(in.Email); !ok {
		fe["email"] = "must be a valid email address"
	}
	if !validate.Password(in.Password) {
		fe["password"] = "must be at least 10 characters with a lowercase letter, an uppercase letter and a digit"
	}
	if len(fe) > 0 {
		return fe
	}
	return nil
}

// Signup creates a customer with a freshly salted hash and binds the
// session to it.
func (s *AccountService) Signup(sid string, in SignupInput) (*domain.Customer, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	email, _ := validate.Email(in.Email)
	cred, err := domain.NewCredential(in.Password)
	if err != nil {
		return nil, err
	}
	c := domain.Customer{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        email,
		PasswordHash: cred.Hash,
		Salt:         cred.Salt,
	}
	id, err := s.Customers.Create(c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	if err := s.Sessions.Bind(sid, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// Login verifies credentials and binds the session. Unknown email and
// wrong password are indistinguishable to the caller. Legacy verifiers
// are rewritten to the current scheme on success; that rewrite is
// best-effort and never fails the login.
func (s *AccountService) Login(sid, email, password string) (*domain.Customer, error) {
	c, err := s.Customers.ByEmail(email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	cred := c.Credential()
	if !cred.Verify(password) {
		return nil, domain.ErrInvalidCredentials
	}
	if cred.NeedsUpgrade() {
		if fresh, err := domain.NewCredential(password); err == nil {
			if s.Customers.UpdateCredential(c.ID, fresh) == nil {
				c.PasswordHash = fresh.Hash
				c.Salt = fresh.Salt
			}
		}
	}
	if err := s.Sessions.Bind(sid, c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *AccountService) Logout(sid string) error {
	return s.Sessions.Unbind(sid)
}

func (s *AccountService) Current(sid string) (*domain.Customer, error) {
	return s.Sessions.Customer(sid)
}
