package businessflow

import (
	"context"

	"github.com/fbopoint/feesched/app/dto"
	"github.com/fbopoint/feesched/models"
	"github.com/fbopoint/feesched/repository"
	"github.com/fbopoint/feesched/utils"
	"github.com/shopspring/decimal"
)

// FeeCalculationFlow is the read-side entry point: it assembles the fee
// schedule, runs the pipeline, and shapes the itemized result.
type FeeCalculationFlow interface {
	CalculateFees(ctx context.Context, req *dto.CalculateFeesRequest) (*dto.CalculateFeesResponse, error)
}

type FeeCalculationFlowImpl struct {
	aircraftRepo     repository.AircraftRepository
	aircraftTypeRepo repository.AircraftTypeRepository
	customerRepo     repository.CustomerRepository
	feeRuleRepo      repository.FeeRuleRepository
	overrideRepo     repository.FeeRuleOverrideRepository
	tierRepo         repository.WaiverTierRepository
	cache            *ScheduleCache
	taxRate          decimal.Decimal
	currency         string
}

func NewFeeCalculationFlow(
	aircraftRepo repository.AircraftRepository,
	aircraftTypeRepo repository.AircraftTypeRepository,
	customerRepo repository.CustomerRepository,
	feeRuleRepo repository.FeeRuleRepository,
	overrideRepo repository.FeeRuleOverrideRepository,
	tierRepo repository.WaiverTierRepository,
	cache *ScheduleCache,
	taxRate decimal.Decimal,
	currency string,
) FeeCalculationFlow {
	if currency == "" {
		currency = utils.DefaultCurrency
	}
	return &FeeCalculationFlowImpl{
		aircraftRepo:     aircraftRepo,
		aircraftTypeRepo: aircraftTypeRepo,
		customerRepo:     customerRepo,
		feeRuleRepo:      feeRuleRepo,
		overrideRepo:     overrideRepo,
		tierRepo:         tierRepo,
		cache:            cache,
		taxRate:          taxRate,
		currency:         currency,
	}
}

func (f *FeeCalculationFlowImpl) CalculateFees(ctx context.Context, req *dto.CalculateFeesRequest) (*dto.CalculateFeesResponse, error) {
	aircraftType, err := f.resolveAircraftType(ctx, req)
	if err != nil {
		return nil, err
	}

	var customer *models.Customer
	if req.CustomerID != 0 {
		customer, err = f.customerRepo.ByID(ctx, req.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, NewBusinessErrorf("CUSTOMER_NOT_FOUND", "Customer %d does not exist", ErrCustomerNotFound, req.CustomerID)
		}
	}

	schedule := f.cache.Get(ctx)
	if schedule == nil {
		schedule, err = LoadFeeSchedule(ctx, f.feeRuleRepo, f.overrideRepo, f.tierRepo)
		if err != nil {
			return nil, err
		}
		f.cache.Set(ctx, schedule)
	}

	input := CalculationContext{
		AircraftTypeID:     aircraftType.ID,
		FuelUpliftGallons:  req.FuelUpliftGallons,
		FuelPricePerGallon: req.FuelPricePerGallon,
		ManualWaiverCodes:  req.ManualWaiverCodes,
	}
	if customer != nil {
		input.CustomerID = customer.ID
	}
	for _, service := range req.AdditionalServices {
		input.AdditionalServices = append(input.AdditionalServices, AdditionalService{
			FeeCode:  service.FeeCode,
			Quantity: service.Quantity,
		})
	}

	result, err := RunCalculation(schedule, aircraftType, customer, f.taxRate, input)
	if err != nil {
		return nil, err
	}

	response := &dto.CalculateFeesResponse{
		FuelSubtotal: result.FuelSubtotal,
		TotalFees:    result.TotalFees,
		TotalWaivers: result.TotalWaivers,
		TaxAmount:    result.TaxAmount,
		GrandTotal:   result.GrandTotal,
		Currency:     f.currency,
		IsCAAApplied: result.IsCAAApplied,
	}
	for _, item := range result.LineItems {
		response.LineItems = append(response.LineItems, dto.LineItemResponse{
			Type:         string(item.Type),
			Description:  item.Description,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Amount:       item.Amount,
			FeeCode:      item.FeeCode,
			IsTaxable:    item.IsTaxable,
			WaiverSource: string(item.WaiverSource),
		})
	}
	return response, nil
}

// resolveAircraftType accepts either a tail number or an explicit aircraft
// type id. The tail number wins when both are present since it identifies a
// concrete aircraft.
func (f *FeeCalculationFlowImpl) resolveAircraftType(ctx context.Context, req *dto.CalculateFeesRequest) (*models.AircraftType, error) {
	if req.TailNumber != "" {
		aircraft, err := f.aircraftRepo.ByTailNumber(ctx, req.TailNumber)
		if err != nil {
			return nil, err
		}
		if aircraft == nil {
			return nil, NewBusinessErrorf("AIRCRAFT_NOT_FOUND", "No aircraft registered with tail number %q", ErrAircraftNotFound, req.TailNumber)
		}
		aircraftType, err := f.aircraftTypeRepo.ByID(ctx, aircraft.AircraftTypeID)
		if err != nil {
			return nil, err
		}
		if aircraftType == nil {
			return nil, NewBusinessErrorf("AIRCRAFT_TYPE_NOT_FOUND", "Aircraft type %d does not exist", ErrAircraftTypeNotFound, aircraft.AircraftTypeID)
		}
		return aircraftType, nil
	}

	if req.AircraftTypeID == 0 {
		return nil, NewBusinessError("AIRCRAFT_TYPE_REQUIRED", "Either tail_number or aircraft_type_id is required", ErrEntityFieldMissing)
	}
	aircraftType, err := f.aircraftTypeRepo.ByID(ctx, req.AircraftTypeID)
	if err != nil {
		return nil, err
	}
	if aircraftType == nil {
		return nil, NewBusinessErrorf("AIRCRAFT_TYPE_NOT_FOUND", "Aircraft type %d does not exist", ErrAircraftTypeNotFound, req.AircraftTypeID)
	}
	return aircraftType, nil
}
