package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"geraiku/internal/domain/model"
	repo "geraiku/internal/repository"
)

type AddressUsecase struct {
	addresses repo.AddressRepository
}

func NewAddressUsecase(addresses repo.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addresses: addresses}
}

type AddressInput struct {
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone"`
	ProvinceID    int64  `json:"province_id"`
	ProvinceName  string `json:"province_name"`
	CityID        int64  `json:"city_id"`
	CityName      string `json:"city_name"`
	DistrictID    int64  `json:"district_id"`
	DistrictName  string `json:"district_name"`
	VillageID     int64  `json:"village_id"`
	VillageName   string `json:"village_name"`
	PostalCode    string `json:"postal_code"`
	StreetAddress string `json:"street_address"`
	Notes         string `json:"notes"`
	IsPrimary     bool   `json:"is_primary"`
}

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]model.Address, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return list, nil
}

func (u *AddressUsecase) Create(ctx context.Context, userID int64, in AddressInput) (model.Address, error) {
	if userID <= 0 {
		return model.Address{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateAddressInput(in); err != nil {
		return model.Address{}, err
	}

	created, err := u.addresses.Create(ctx, model.Address{
		UserID:        userID,
		RecipientName: strings.TrimSpace(in.RecipientName),
		Phone:         strings.TrimSpace(in.Phone),
		ProvinceID:    in.ProvinceID,
		ProvinceName:  in.ProvinceName,
		CityID:        in.CityID,
		CityName:      in.CityName,
		DistrictID:    in.DistrictID,
		DistrictName:  in.DistrictName,
		VillageID:     in.VillageID,
		VillageName:   in.VillageName,
		PostalCode:    strings.TrimSpace(in.PostalCode),
		StreetAddress: strings.TrimSpace(in.StreetAddress),
		Notes:         strings.TrimSpace(in.Notes),
	})
	if err != nil {
		return model.Address{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if in.IsPrimary {
		if err := u.addresses.SetPrimary(ctx, userID, created.ID); err != nil {
			return model.Address{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		created.IsPrimary = true
	}

	return created, nil
}

func (u *AddressUsecase) Update(ctx context.Context, userID int64, addressID int64, in AddressInput) (model.Address, error) {
	if userID <= 0 {
		return model.Address{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateAddressInput(in); err != nil {
		return model.Address{}, err
	}

	existing, err := u.owned(ctx, userID, addressID)
	if err != nil {
		return model.Address{}, err
	}

	existing.RecipientName = strings.TrimSpace(in.RecipientName)
	existing.Phone = strings.TrimSpace(in.Phone)
	existing.ProvinceID = in.ProvinceID
	existing.ProvinceName = in.ProvinceName
	existing.CityID = in.CityID
	existing.CityName = in.CityName
	existing.DistrictID = in.DistrictID
	existing.DistrictName = in.DistrictName
	existing.VillageID = in.VillageID
	existing.VillageName = in.VillageName
	existing.PostalCode = strings.TrimSpace(in.PostalCode)
	existing.StreetAddress = strings.TrimSpace(in.StreetAddress)
	existing.Notes = strings.TrimSpace(in.Notes)

	if err := u.addresses.Update(ctx, existing); err != nil {
		return model.Address{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if in.IsPrimary && !existing.IsPrimary {
		if err := u.addresses.SetPrimary(ctx, userID, existing.ID); err != nil {
			return model.Address{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		existing.IsPrimary = true
	}

	return existing, nil
}

func (u *AddressUsecase) Delete(ctx context.Context, userID int64, addressID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if _, err := u.owned(ctx, userID, addressID); err != nil {
		return err
	}

	if err := u.addresses.Delete(ctx, addressID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *AddressUsecase) SetPrimary(ctx context.Context, userID int64, addressID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if _, err := u.owned(ctx, userID, addressID); err != nil {
		return err
	}

	if err := u.addresses.SetPrimary(ctx, userID, addressID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *AddressUsecase) owned(ctx context.Context, userID int64, addressID int64) (model.Address, error) {
	if addressID <= 0 {
		return model.Address{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	a, err := u.addresses.FindByID(ctx, addressID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Address{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Address{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if a.UserID != userID {
		return model.Address{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return a, nil
}

func validateAddressInput(in AddressInput) error {
	if strings.TrimSpace(in.RecipientName) == "" {
		return NewHTTPError(http.StatusBadRequest, "recipient_name is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return NewHTTPError(http.StatusBadRequest, "phone is required")
	}
	if in.ProvinceID <= 0 || in.CityID <= 0 || in.DistrictID <= 0 || in.VillageID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "full administrative area is required")
	}
	if strings.TrimSpace(in.PostalCode) == "" {
		return NewHTTPError(http.StatusBadRequest, "postal_code is required")
	}
	if strings.TrimSpace(in.StreetAddress) == "" {
		return NewHTTPError(http.StatusBadRequest, "street_address is required")
	}
	return nil
}
