package service

import (
	"strings"

	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/repository"
)

// AddressService handles the user address book.
type AddressService struct {
	repo repository.AddressRepository
}

// NewAddressService creates an address service.
func NewAddressService(repo repository.AddressRepository) *AddressService {
	return &AddressService{repo: repo}
}

// AddressInput is the create/update payload.
type AddressInput struct {
	FullName   string
	Phone      string
	Line1      string
	Line2      string
	City       string
	County     string
	PostalCode string
	Country    string
	IsDefault  bool
}

// List lists the user's addresses, default first.
func (s *AddressService) List(userID uint) ([]models.Address, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	return s.repo.ListByUser(userID)
}

// GetByID fetches one of the user's addresses.
func (s *AddressService) GetByID(id, userID uint) (*models.Address, error) {
	address, err := s.repo.GetByIDAndUser(id, userID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}
	return address, nil
}

// GetDefault fetches the user's default address, nil when none is set.
func (s *AddressService) GetDefault(userID uint) (*models.Address, error) {
	return s.repo.GetDefaultByUser(userID)
}

// Create adds an address. The first address becomes the default.
func (s *AddressService) Create(userID uint, input AddressInput) (*models.Address, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}

	existing, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	isDefault := input.IsDefault || len(existing) == 0

	if isDefault {
		if err := s.repo.ClearDefault(userID); err != nil {
			return nil, err
		}
	}

	address := models.Address{
		UserID:     userID,
		FullName:   strings.TrimSpace(input.FullName),
		Phone:      strings.TrimSpace(input.Phone),
		Line1:      strings.TrimSpace(input.Line1),
		Line2:      strings.TrimSpace(input.Line2),
		City:       strings.TrimSpace(input.City),
		County:     strings.TrimSpace(input.County),
		PostalCode: strings.TrimSpace(input.PostalCode),
		Country:    strings.ToUpper(strings.TrimSpace(input.Country)),
		IsDefault:  isDefault,
	}
	if address.Country == "" {
		address.Country = "KE"
	}
	if err := s.repo.Create(&address); err != nil {
		return nil, err
	}
	return &address, nil
}

// Update updates one of the user's addresses.
func (s *AddressService) Update(id, userID uint, input AddressInput) (*models.Address, error) {
	address, err := s.repo.GetByIDAndUser(id, userID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}

	if input.IsDefault && !address.IsDefault {
		if err := s.repo.ClearDefault(userID); err != nil {
			return nil, err
		}
	}

	address.FullName = strings.TrimSpace(input.FullName)
	address.Phone = strings.TrimSpace(input.Phone)
	address.Line1 = strings.TrimSpace(input.Line1)
	address.Line2 = strings.TrimSpace(input.Line2)
	address.City = strings.TrimSpace(input.City)
	address.County = strings.TrimSpace(input.County)
	address.PostalCode = strings.TrimSpace(input.PostalCode)
	if country := strings.ToUpper(strings.TrimSpace(input.Country)); country != "" {
		address.Country = country
	}
	address.IsDefault = input.IsDefault || address.IsDefault

	if err := s.repo.Update(address); err != nil {
		return nil, err
	}
	return address, nil
}

// Delete removes one of the user's addresses.
func (s *AddressService) Delete(id, userID uint) error {
	address, err := s.repo.GetByIDAndUser(id, userID)
	if err != nil {
		return err
	}
	if address == nil {
		return ErrAddressNotFound
	}
	return s.repo.Delete(id, userID)
}
