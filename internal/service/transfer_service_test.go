package service_test

import (
	"context"
	"testing"

	"branchpos/internal/dto"
	"branchpos/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMainBranch = "Main Branch"

func buildTransferSvc() (service.TransferService, *stubStockRepo, *stubProductRepo, *stubBranchRepo, *stubMovementRepo) {
	stockRepo := newStubStockRepo()
	productRepo := newStubProductRepo()
	branchRepo := newStubBranchRepo()
	movRepo := &stubMovementRepo{}
	svc := service.NewTransferService(stockRepo, productRepo, branchRepo, movRepo, testMainBranch)
	return svc, stockRepo, productRepo, branchRepo, movRepo
}

func TestTransfer_MovesStockBetweenBranches(t *testing.T) {
	svc, stockRepo, productRepo, branchRepo, movRepo := buildTransferSvc()
	from := seedBranch(branchRepo, "Westlands", false)
	to := seedBranch(branchRepo, "Karen", false)
	p := seedProduct(productRepo, stockRepo, "SKU-001", "Milk 500ml", uuid.New(), 65)
	seedStock(stockRepo, from.ID, p, 50)

	resp, err := svc.Transfer(context.Background(), dto.TransferStockRequest{
		ProductID:    p.ID.String(),
		FromBranchID: from.ID.String(),
		ToBranchID:   to.ID.String(),
		Quantity:     20,
	})
	require.NoError(t, err)

	assert.Equal(t, 30, stockRepo.quantity(from.ID, p.ID))
	assert.Equal(t, 20, stockRepo.quantity(to.ID, p.ID))

	// The response reports both sides of the move
	assert.Equal(t, "SKU-001", resp.SKU)
	assert.Equal(t, from.ID.String(), resp.FromBranchID)
	assert.Equal(t, to.ID.String(), resp.ToBranchID)
	assert.Equal(t, 30, resp.RemainingAtSource)
	assert.Equal(t, 20, resp.TotalAtDestination)

	// Total across branches is conserved
	assert.Equal(t, 50, stockRepo.quantity(from.ID, p.ID)+stockRepo.quantity(to.ID, p.ID))

	require.Len(t, movRepo.movements, 2)
	out, in := movRepo.movements[0], movRepo.movements[1]
	assert.Equal(t, "transfer_out", out.Type)
	assert.Equal(t, -20, out.Quantity)
	assert.Equal(t, "transfer_in", in.Type)
	assert.Equal(t, 20, in.Quantity)

	// Both halves share one reference
	require.NotNil(t, out.ReferenceID)
	require.NotNil(t, in.ReferenceID)
	assert.Equal(t, *out.ReferenceID, *in.ReferenceID)
}

func TestTransfer_MergesIntoExistingDestination(t *testing.T) {
	svc, stockRepo, productRepo, branchRepo, _ := buildTransferSvc()
	from := seedBranch(branchRepo, "Westlands", false)
	to := seedBranch(branchRepo, "Karen", false)
	p := seedProduct(productRepo, stockRepo, "SKU-001", "Milk 500ml", uuid.New(), 65)
	seedStock(stockRepo, from.ID, p, 40)
	seedStock(stockRepo, to.ID, p, 5)

	resp, err := svc.Transfer(context.Background(), dto.TransferStockRequest{
		ProductID:    p.ID.String(),
		FromBranchID: from.ID.String(),
		ToBranchID:   to.ID.String(),
		Quantity:     10,
	})
	require.NoError(t, err)

	assert.Equal(t, 30, stockRepo.quantity(from.ID, p.ID))
	assert.Equal(t, 15, stockRepo.quantity(to.ID, p.ID))
	assert.Equal(t, 30, resp.RemainingAtSource)
	assert.Equal(t, 15, resp.TotalAtDestination)
}

func TestTransfer_InsufficientStock(t *testing.T) {
	svc, stockRepo, productRepo, branchRepo, movRepo := buildTransferSvc()
	from := seedBranch(branchRepo, "Westlands", false)
	to := seedBranch(branchRepo, "Karen", false)
	p := seedProduct(productRepo, stockRepo, "SKU-001", "Milk 500ml", uuid.New(), 65)
	seedStock(stockRepo, from.ID, p, 15)

	_, err := svc.Transfer(context.Background(), dto.TransferStockRequest{
		ProductID:    p.ID.String(),
		FromBranchID: from.ID.String(),
		ToBranchID:   to.ID.String(),
		Quantity:     20,
	})

	var insufficient *service.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "SKU-001", insufficient.SKU)
	assert.Equal(t, 15, insufficient.Available)
	assert.Equal(t, 20, insufficient.Requested)

	// Neither side moves
	assert.Equal(t, 15, stockRepo.quantity(from.ID, p.ID))
	assert.Equal(t, 0, stockRepo.quantity(to.ID, p.ID))
	assert.Empty(t, movRepo.movements)
}

func TestTransfer_MissingSourceRowReportsZeroAvailable(t *testing.T) {
	svc, stockRepo, productRepo, branchRepo, _ := buildTransferSvc()
	from := seedBranch(branchRepo, "Westlands", false)
	to := seedBranch(branchRepo, "Karen", false)
	p := seedProduct(productRepo, stockRepo, "SKU-001", "Milk 500ml", uuid.New(), 65)

	_, err := svc.Transfer(context.Background(), dto.TransferStockRequest{
		ProductID:    p.ID.String(),
		FromBranchID: from.ID.String(),
		ToBranchID:   to.ID.String(),
		Quantity:     1,
	})

	var insufficient *service.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 0, insufficient.Available)
	assert.Equal(t, 1, insufficient.Requested)
}

func TestTransfer_DefaultsSourceToMainBranch(t *testing.T) {
	svc, stockRepo, productRepo, branchRepo, _ := buildTransferSvc()
	main := seedBranch(branchRepo, testMainBranch, true)
	to := seedBranch(branchRepo, "Karen", false)
	p := seedProduct(productRepo, stockRepo, "SKU-001", "Milk 500ml", uuid.New(), 65)
	seedStock(stockRepo, main.ID, p, 100)

	resp, err := svc.Transfer(context.Background(), dto.TransferStockRequest{
		ProductID:  p.ID.String(),
		ToBranchID: to.ID.String(),
		Quantity:   25,
	})
	require.NoError(t, err)

	assert.Equal(t, 75, stockRepo.quantity(main.ID, p.ID))
	assert.Equal(t, 25, stockRepo.quantity(to.ID, p.ID))
	assert.Equal(t, main.ID.String(), resp.FromBranchID)
	assert.Equal(t, testMainBranch, resp.FromBranchName)
	assert.Equal(t, 75, resp.RemainingAtSource)
}

func TestTransfer_SameBranchRejected(t *testing.T) {
	svc, stockRepo, productRepo, branchRepo, _ := buildTransferSvc()
	branch := seedBranch(branchRepo, "Westlands", false)
	p := seedProduct(productRepo, stockRepo, "SKU-001", "Milk 500ml", uuid.New(), 65)
	seedStock(stockRepo, branch.ID, p, 10)

	_, err := svc.Transfer(context.Background(), dto.TransferStockRequest{
		ProductID:    p.ID.String(),
		FromBranchID: branch.ID.String(),
		ToBranchID:   branch.ID.String(),
		Quantity:     5,
	})

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 10, stockRepo.quantity(branch.ID, p.ID))
}

func TestTransfer_UnknownProduct(t *testing.T) {
	svc, _, _, branchRepo, _ := buildTransferSvc()
	from := seedBranch(branchRepo, "Westlands", false)
	to := seedBranch(branchRepo, "Karen", false)

	_, err := svc.Transfer(context.Background(), dto.TransferStockRequest{
		ProductID:    uuid.NewString(),
		FromBranchID: from.ID.String(),
		ToBranchID:   to.ID.String(),
		Quantity:     5,
	})

	var notFound *service.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "product", notFound.Resource)
}
