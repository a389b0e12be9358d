package generator

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/Boluski2/lendsqr-admin/internal/domain"
)

// DateJoinedLayout is the display format of User.DateJoined.
const DateJoinedLayout = "Jan 2, 2006, 03:04 PM"

// Source is the randomness the generator draws from. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
	Int63n(n int64) int64
	Float64() float64
}

// Generator produces synthetic back-office users.
type Generator struct {
	cfg      Config
	rand     Source
	fixtures fixtures
}

// New returns a Generator seeded from cfg.Seed, or from the clock when the seed is zero.
func New(cfg Config) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return NewWithSource(cfg, rand.New(rand.NewSource(cfg.Seed)))
}

// NewWithSource returns a Generator drawing from src.
func NewWithSource(cfg Config, src Source) *Generator {
	if cfg.Count <= 0 {
		cfg.Count = DefaultConfig().Count
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = DefaultConfig().IDPrefix
	}
	return &Generator{
		cfg:      cfg,
		rand:     src,
		fixtures: defaultFixtures(),
	}
}

// UserID formats the id of the record at 1-based position index.
func UserID(prefix string, index int) string {
	return fmt.Sprintf("%s%02d", prefix, index)
}

// Generate synthesises cfg.Count users. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) ([]domain.User, error) {
	users := make([]domain.User, g.cfg.Count)
	for i := range users {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		users[i] = g.generateUser(i + 1)
	}
	return users, nil
}

func (g *Generator) generateUser(index int) domain.User {
	first := g.pick(g.fixtures.firstNames)
	last := g.pick(g.fixtures.lastNames)
	organization := g.pick(g.fixtures.organizations)
	lowerFirst := strings.ToLower(first)
	lowerLast := strings.ToLower(last)
	orgDomain := strings.ToLower(organization)

	children := "None"
	if g.rand.Float64() <= 0.5 {
		children = fmt.Sprint(g.between(1, 4))
	}
	gender := "Female"
	if g.rand.Float64() > 0.5 {
		gender = "Male"
	}

	return domain.User{
		ID:           UserID(g.cfg.IDPrefix, index),
		Organization: organization,
		Username:     fmt.Sprintf("%s%d", first, g.between(1, 999)),
		Email:        fmt.Sprintf("%s@%s.com", lowerFirst, orgDomain),
		PhoneNumber:  g.randomPhone(),
		DateJoined:   g.randomDateJoined(),
		Status:       domain.Statuses[g.rand.Intn(len(domain.Statuses))],
		PersonalInfo: domain.PersonalInfo{
			FullName:        first + " " + last,
			PhoneNumber:     g.randomPhone(),
			EmailAddress:    lowerFirst + "@gmail.com",
			BVN:             fmt.Sprint(g.between64(10000000000, 99999999999)),
			Gender:          gender,
			MaritalStatus:   g.pick(g.fixtures.maritalStatuses),
			Children:        children,
			TypeOfResidence: g.pick(g.fixtures.residenceTypes),
		},
		EducationAndEmployment: domain.EducationAndEmployment{
			LevelOfEducation:     g.pick(g.fixtures.educationLevels),
			EmploymentStatus:     g.pick(g.fixtures.employmentStatuses),
			SectorOfEmployment:   g.pick(g.fixtures.sectors),
			DurationOfEmployment: fmt.Sprintf("%d years", g.between(1, 10)),
			OfficeEmail:          fmt.Sprintf("%s@%s.com", lowerFirst, orgDomain),
			MonthlyIncome:        fmt.Sprintf("₦%d,000.00 - ₦%d,000.00", g.between(100, 400), g.between(400, 900)),
			LoanRepayment:        fmt.Sprintf("%d,000", g.between(10, 100)),
		},
		Socials: domain.Socials{
			Twitter:   fmt.Sprintf("@%s_%s", lowerFirst, lowerLast),
			Facebook:  first + " " + last,
			Instagram: fmt.Sprintf("@%s_%s", lowerFirst, lowerLast),
		},
		Guarantors:     []domain.Guarantor{g.randomGuarantor(), g.randomGuarantor()},
		AccountBalance: fmt.Sprintf("₦%d,000.00", g.between(50, 500)),
		AccountNumber:  fmt.Sprint(g.between64(1000000000, 9999999999)),
		BankName:       g.pick(g.fixtures.banks) + " Bank",
		Tier:           1 + g.rand.Intn(3),
	}
}

func (g *Generator) randomGuarantor() domain.Guarantor {
	first := g.pick(g.fixtures.firstNames)
	last := g.pick(g.fixtures.lastNames)
	return domain.Guarantor{
		FullName:     first + " " + last,
		PhoneNumber:  g.randomPhone(),
		EmailAddress: strings.ToLower(first) + "@gmail.com",
		Relationship: g.pick(g.fixtures.relationships),
	}
}

func (g *Generator) randomPhone() string {
	return fmt.Sprintf("0%d%d", g.between(70, 90), g.between(10000000, 99999999))
}

func (g *Generator) randomDateJoined() string {
	start := time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	offset := time.Duration(g.rand.Float64() * float64(end.Sub(start)))
	return start.Add(offset).Format(DateJoinedLayout)
}

func (g *Generator) pick(options []string) string {
	return options[g.rand.Intn(len(options))]
}

// between returns an integer in [min, max].
func (g *Generator) between(min, max int) int {
	return min + g.rand.Intn(max-min+1)
}

func (g *Generator) between64(min, max int64) int64 {
	return min + g.rand.Int63n(max-min+1)
}

type fixtures struct {
	organizations      []string
	firstNames         []string
	lastNames          []string
	educationLevels    []string
	employmentStatuses []string
	sectors            []string
	residenceTypes     []string
	relationships      []string
	maritalStatuses    []string
	banks              []string
}

func defaultFixtures() fixtures {
	return fixtures{
		organizations: []string{"Lendsqr", "Irorun", "Lendstar", "Quickloan", "Cashbox"},
		firstNames: []string{"Grace", "Tosin", "Debby", "Adedeji", "Chioma", "Oluwaseun", "Emeka", "Funke",
			"Babatunde", "Ngozi", "Ifeanyi", "Yemi", "Adaeze", "Kunle", "Tola"},
		lastNames: []string{"Effiom", "Dokunmu", "Ogana", "Williams", "Okonkwo", "Adeyemi", "Nnamdi", "Adeleke",
			"Ibrahim", "Chukwu", "Olayinka", "Bankole", "Obi", "Fashola", "Bakare"},
		educationLevels:    []string{"B.Sc", "M.Sc", "Ph.D", "HND", "OND", "SSCE"},
		employmentStatuses: []string{"Employed", "Self-employed", "Unemployed", "Student", "Retired"},
		sectors: []string{"FinTech", "Banking", "Technology", "Healthcare", "Education", "Agriculture",
			"Oil & Gas", "Telecommunications"},
		residenceTypes:  []string{"Parent's Apartment", "Rented", "Owned", "Company Provided"},
		relationships:   []string{"Sister", "Brother", "Friend", "Colleague", "Spouse", "Parent", "Child"},
		maritalStatuses: []string{"Single", "Married", "Divorced", "Widowed"},
		banks:           []string{"Providus", "GTBank", "First Bank", "Access", "UBA"},
	}
}
