package user

import "errors"

var ErrUnknownField = errors.New("unknown form field")

// Form is the flat editing record. Address and company leaves are flattened,
// companyName maps to company.name.
type Form struct {
	Name        string `json:"name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	Street      string `json:"street"`
	Suite       string `json:"suite"`
	City        string `json:"city"`
	Zipcode     string `json:"zipcode"`
	CompanyName string `json:"companyName"`
}

// FieldNames lists the form field names in display order.
var FieldNames = []string{
	"name",
	"username",
	"email",
	"phone",
	"website",
	"street",
	"suite",
	"city",
	"zipcode",
	"companyName",
}

func (f *Form) field(name string) *string {
	switch name {
	case "name":
		return &f.Name
	case "username":
		return &f.Username
	case "email":
		return &f.Email
	case "phone":
		return &f.Phone
	case "website":
		return &f.Website
	case "street":
		return &f.Street
	case "suite":
		return &f.Suite
	case "city":
		return &f.City
	case "zipcode":
		return &f.Zipcode
	case "companyName":
		return &f.CompanyName
	default:
		return nil
	}
}

// Set replaces a single field. No validation or trimming is applied.
func (f Form) Set(name, value string) (Form, error) {
	p := f.field(name)
	if p == nil {
		return f, ErrUnknownField
	}
	*p = value
	return f, nil
}

func (f Form) Get(name string) (string, bool) {
	p := f.field(name)
	if p == nil {
		return "", false
	}
	return *p, true
}

func (f Form) IsEmpty() bool {
	return f == Form{}
}

// FormFrom flattens u into a form.
func FormFrom(u User) Form {
	return Form{
		Name:        u.Name,
		Username:    u.Username,
		Email:       u.Email,
		Phone:       u.Phone,
		Website:     u.Website,
		Street:      u.Address.Street,
		Suite:       u.Address.Suite,
		City:        u.Address.City,
		Zipcode:     u.Address.Zipcode,
		CompanyName: u.Company.Name,
	}
}

// NewFromForm builds a fresh user with the given id from the form values.
func NewFromForm(id int, f Form) User {
	return User{
		ID:       id,
		Name:     f.Name,
		Username: f.Username,
		Email:    f.Email,
		Phone:    f.Phone,
		Website:  f.Website,
		Address: Address{
			Street:  f.Street,
			Suite:   f.Suite,
			City:    f.City,
			Zipcode: f.Zipcode,
		},
		Company: Company{
			Name: f.CompanyName,
		},
	}
}

// Merge overlays the form onto u. Fields the form does not carry (geo,
// catchPhrase, bs) and the id are kept from u.
func Merge(u User, f Form) User {
	out := u.Clone()
	out.Name = f.Name
	out.Username = f.Username
	out.Email = f.Email
	out.Phone = f.Phone
	out.Website = f.Website
	out.Address.Street = f.Street
	out.Address.Suite = f.Suite
	out.Address.City = f.City
	out.Address.Zipcode = f.Zipcode
	out.Company.Name = f.CompanyName
	return out
}
