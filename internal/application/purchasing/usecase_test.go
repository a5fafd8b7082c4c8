package purchasing_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Fabrica-api/internal/application/dto"
	"github.com/jhoicas/Fabrica-api/internal/application/inventory"
	"github.com/jhoicas/Fabrica-api/internal/application/purchasing"
	"github.com/jhoicas/Fabrica-api/internal/domain"
	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
	"github.com/jhoicas/Fabrica-api/internal/domain/repository"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu        sync.Mutex
	items     map[string]*entity.InventoryItem
	balances  map[string]decimal.Decimal
	movements map[string][]*entity.StockMovement
	pos       map[string]*entity.PurchaseOrder // por código
	logs      []*entity.ActivityLogEntry
	poSeq     int64
}

func newMemStore() *memStore {
	return &memStore{
		items:     map[string]*entity.InventoryItem{},
		balances:  map[string]decimal.Decimal{},
		movements: map[string][]*entity.StockMovement{},
		pos:       map[string]*entity.PurchaseOrder{},
	}
}

func (s *memStore) addItem(code string) *entity.InventoryItem {
	it := &entity.InventoryItem{
		ID:     uuid.New().String(),
		Code:   code,
		Name:   "artículo " + code,
		Unit:   "kg",
		Active: true,
	}
	s.items[code] = it
	return it
}

type snapshot struct {
	balances map[string]decimal.Decimal
	statuses map[string]string
	received map[string]decimal.Decimal // por lineID
	movLens  map[string]int
	logLen   int
}

func (s *memStore) snap() snapshot {
	sn := snapshot{
		balances: map[string]decimal.Decimal{},
		statuses: map[string]string{},
		received: map[string]decimal.Decimal{},
		movLens:  map[string]int{},
		logLen:   len(s.logs),
	}
	for k, v := range s.balances {
		sn.balances[k] = v
	}
	for code, po := range s.pos {
		sn.statuses[code] = po.Status
		for _, l := range po.Lines {
			sn.received[l.ID] = l.ReceivedQty
		}
	}
	for k, v := range s.movements {
		sn.movLens[k] = len(v)
	}
	return sn
}

func (s *memStore) restore(sn snapshot) {
	s.balances = sn.balances
	for code, po := range s.pos {
		if st, ok := sn.statuses[code]; ok {
			po.Status = st
			for i := range po.Lines {
				po.Lines[i].ReceivedQty = sn.received[po.Lines[i].ID]
			}
		} else {
			delete(s.pos, code)
		}
	}
	for k := range s.movements {
		if n, ok := sn.movLens[k]; ok {
			s.movements[k] = s.movements[k][:n]
		} else {
			delete(s.movements, k)
		}
	}
	s.logs = s.logs[:sn.logLen]
}

type memItemRepo struct{ s *memStore }

func (r *memItemRepo) Create(*entity.InventoryItem) error { return nil }
func (r *memItemRepo) GetByID(id string) (*entity.InventoryItem, error) {
	for _, it := range r.s.items {
		if it.ID == id {
			return it, nil
		}
	}
	return nil, nil
}
func (r *memItemRepo) GetByCode(code string) (*entity.InventoryItem, error) {
	return r.s.items[code], nil
}
func (r *memItemRepo) List(string, bool, int, int) ([]*entity.InventoryItem, error) {
	return nil, nil
}
func (r *memItemRepo) Update(*entity.InventoryItem) error { return nil }
func (r *memItemRepo) Deactivate(string) error            { return nil }
func (r *memItemRepo) NextCode(string) (string, error)    { return "", nil }

type memStockRepo struct{ s *memStore }

func (r *memStockRepo) Get(itemID string) (*entity.StockBalance, error) {
	return &entity.StockBalance{ItemID: itemID, Quantity: r.s.balances[itemID]}, nil
}
func (r *memStockRepo) GetForUpdate(itemID string) (*entity.StockBalance, error) {
	return r.Get(itemID)
}
func (r *memStockRepo) Upsert(b *entity.StockBalance) error {
	r.s.balances[b.ItemID] = b.Quantity
	return nil
}

type memMovementRepo struct{ s *memStore }

func (r *memMovementRepo) Create(m *entity.StockMovement) error {
	r.s.movements[m.ItemID] = append(r.s.movements[m.ItemID], m)
	return nil
}
func (r *memMovementRepo) NextSeq(itemID string) (int64, error) {
	return int64(len(r.s.movements[itemID])) + 1, nil
}
func (r *memMovementRepo) ListByItem(itemID string, _, _ *time.Time, _, _ int) ([]*entity.StockMovement, error) {
	return r.s.movements[itemID], nil
}
func (r *memMovementRepo) SumByItem(itemID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range r.s.movements[itemID] {
		sum = sum.Add(m.Quantity)
	}
	return sum, nil
}

type memLogRepo struct{ s *memStore }

func (r *memLogRepo) Append(e *entity.ActivityLogEntry) error {
	e.ID = int64(len(r.s.logs)) + 1
	r.s.logs = append(r.s.logs, e)
	return nil
}
func (r *memLogRepo) List(repository.ActivityLogFilter) ([]*entity.ActivityLogEntry, int, error) {
	return r.s.logs, len(r.s.logs), nil
}

type memPORepo struct{ s *memStore }

func (r *memPORepo) Create(po *entity.PurchaseOrder) error {
	r.s.pos[po.Code] = po
	return nil
}
func (r *memPORepo) GetByCode(code string) (*entity.PurchaseOrder, error) {
	return r.s.pos[code], nil
}
func (r *memPORepo) GetByCodeForUpdate(code string) (*entity.PurchaseOrder, error) {
	return r.s.pos[code], nil
}
func (r *memPORepo) List(string, string, int, int) ([]*entity.PurchaseOrder, error) {
	var out []*entity.PurchaseOrder
	for _, po := range r.s.pos {
		out = append(out, po)
	}
	return out, nil
}
func (r *memPORepo) UpdateStatus(poID, status string) error {
	for _, po := range r.s.pos {
		if po.ID == poID {
			po.Status = status
		}
	}
	return nil
}
func (r *memPORepo) UpdateLineReceived(lineID string, received decimal.Decimal) error {
	for _, po := range r.s.pos {
		for i := range po.Lines {
			if po.Lines[i].ID == lineID {
				po.Lines[i].ReceivedQty = received
			}
		}
	}
	return nil
}
func (r *memPORepo) NextCode() (string, error) {
	r.s.poSeq++
	return fmt.Sprintf("PO-%04d", r.s.poSeq), nil
}

type memPOTxRunner struct{ s *memStore }

func (tr *memPOTxRunner) Run(ctx context.Context, fn func(
	poRepo repository.PurchaseOrderRepository,
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	itemRepo repository.ItemRepository,
	logRepo repository.ActivityLogRepository,
) error) error {
	tr.s.mu.Lock()
	defer tr.s.mu.Unlock()
	sn := tr.s.snap()
	err := fn(&memPORepo{tr.s}, &memMovementRepo{tr.s}, &memStockRepo{tr.s}, &memItemRepo{tr.s}, &memLogRepo{tr.s})
	if err != nil {
		tr.s.restore(sn)
	}
	return err
}

type memInvTxRunner struct{ s *memStore }

func (tr *memInvTxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	itemRepo repository.ItemRepository,
	logRepo repository.ActivityLogRepository,
) error) error {
	tr.s.mu.Lock()
	defer tr.s.mu.Unlock()
	sn := tr.s.snap()
	err := fn(&memMovementRepo{tr.s}, &memStockRepo{tr.s}, &memItemRepo{tr.s}, &memLogRepo{tr.s})
	if err != nil {
		tr.s.restore(sn)
	}
	return err
}

func newPurchaseUC(s *memStore) *purchasing.UseCase {
	movUC := inventory.NewRecordMovementUseCase(&memInvTxRunner{s}, &memItemRepo{s})
	return purchasing.NewUseCase(&memPOTxRunner{s}, movUC, &memPORepo{s}, &memItemRepo{s})
}

func createPO(t *testing.T, uc *purchasing.UseCase, lines ...dto.POLineRequest) *entity.PurchaseOrder {
	t.Helper()
	po, err := uc.CreatePO(context.Background(), "admin-1", dto.CreatePORequest{
		Supplier:     "Molinos del Sur",
		ExpectedDate: time.Now().Add(7 * 24 * time.Hour),
		Lines:        lines,
	})
	require.NoError(t, err)
	return po
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestCreatePO_ArrancaOpenConRecepcionCero(t *testing.T) {
	s := newMemStore()
	s.addItem("MAT-0001")
	uc := newPurchaseUC(s)

	po := createPO(t, uc, dto.POLineRequest{ItemCode: "MAT-0001", OrderedQty: d("100"), UnitCost: d("2.5")})
	assert.Equal(t, entity.POOpen, po.Status)
	assert.Equal(t, "PO-0001", po.Code)
	require.Len(t, po.Lines, 1)
	assert.True(t, po.Lines[0].ReceivedQty.IsZero())
	require.Len(t, s.logs, 1)
	assert.Equal(t, "po_created", s.logs[0].Action)
}

func TestCreatePO_Validaciones(t *testing.T) {
	s := newMemStore()
	s.addItem("MAT-0001")
	uc := newPurchaseUC(s)
	ctx := context.Background()

	_, err := uc.CreatePO(ctx, "admin-1", dto.CreatePORequest{Supplier: "X"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "OC sin líneas")

	_, err = uc.CreatePO(ctx, "admin-1", dto.CreatePORequest{
		Supplier: "X",
		Lines:    []dto.POLineRequest{{ItemCode: "MAT-0001", OrderedQty: d("0"), UnitCost: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = uc.CreatePO(ctx, "admin-1", dto.CreatePORequest{
		Supplier: "X",
		Lines:    []dto.POLineRequest{{ItemCode: "MAT-9999", OrderedQty: d("1"), UnitCost: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrUnknownItem)
}

func TestReceiveLine_ParcialesHastaCompletar(t *testing.T) {
	s := newMemStore()
	it := s.addItem("MAT-0001")
	uc := newPurchaseUC(s)
	ctx := context.Background()

	po := createPO(t, uc, dto.POLineRequest{ItemCode: "MAT-0001", OrderedQty: d("10"), UnitCost: d("2")})
	lineID := po.Lines[0].ID

	po, err := uc.ReceiveLine(ctx, "user-1", po.Code, lineID, d("4"))
	require.NoError(t, err)
	assert.Equal(t, entity.POPartiallyReceived, po.Status)
	assert.True(t, s.balances[it.ID].Equal(d("4")), "la recepción entra al stock")

	// La recepción exacta del remanente completa la línea y la OC.
	po, err = uc.ReceiveLine(ctx, "user-1", po.Code, lineID, d("6"))
	require.NoError(t, err)
	assert.Equal(t, entity.POCompleted, po.Status)
	assert.True(t, s.balances[it.ID].Equal(d("10")))

	// Los movimientos quedan referenciados a la OC.
	require.Len(t, s.movements[it.ID], 2)
	for _, m := range s.movements[it.ID] {
		assert.Equal(t, entity.MovementReceipt, m.Kind)
		assert.Equal(t, entity.CausePurchaseOrder, m.CauseType)
		assert.Equal(t, po.Code, m.CauseRef)
	}

	// po_created + 2 x (stock_movement + po_line_received).
	assert.Len(t, s.logs, 5)
}

func TestReceiveLine_SobreRecepcionRechazada(t *testing.T) {
	s := newMemStore()
	it := s.addItem("MAT-0001")
	uc := newPurchaseUC(s)
	ctx := context.Background()

	po := createPO(t, uc, dto.POLineRequest{ItemCode: "MAT-0001", OrderedQty: d("10"), UnitCost: d("2")})
	lineID := po.Lines[0].ID

	_, err := uc.ReceiveLine(ctx, "user-1", po.Code, lineID, d("11"))
	assert.ErrorIs(t, err, domain.ErrOverReceipt)

	// También acumulada: 6 + 5 > 10.
	_, err = uc.ReceiveLine(ctx, "user-1", po.Code, lineID, d("6"))
	require.NoError(t, err)
	_, err = uc.ReceiveLine(ctx, "user-1", po.Code, lineID, d("5"))
	assert.ErrorIs(t, err, domain.ErrOverReceipt)

	// El rechazo no movió stock ni tocó la línea.
	assert.True(t, s.balances[it.ID].Equal(d("6")))
	assert.True(t, s.pos[po.Code].Lines[0].ReceivedQty.Equal(d("6")))
}

func TestReceiveLine_ErroresDeEntrada(t *testing.T) {
	s := newMemStore()
	s.addItem("MAT-0001")
	uc := newPurchaseUC(s)
	ctx := context.Background()

	po := createPO(t, uc, dto.POLineRequest{ItemCode: "MAT-0001", OrderedQty: d("10"), UnitCost: d("2")})

	_, err := uc.ReceiveLine(ctx, "user-1", po.Code, po.Lines[0].ID, d("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = uc.ReceiveLine(ctx, "user-1", "PO-NOPE", po.Lines[0].ID, d("1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.ReceiveLine(ctx, "user-1", po.Code, "linea-inexistente", d("1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancelPO_CongelaElRemanente(t *testing.T) {
	s := newMemStore()
	it := s.addItem("MAT-0001")
	uc := newPurchaseUC(s)
	ctx := context.Background()

	po := createPO(t, uc, dto.POLineRequest{ItemCode: "MAT-0001", OrderedQty: d("10"), UnitCost: d("2")})
	_, err := uc.ReceiveLine(ctx, "user-1", po.Code, po.Lines[0].ID, d("4"))
	require.NoError(t, err)

	cancelled, err := uc.CancelPO(ctx, "admin-1", po.Code)
	require.NoError(t, err)
	assert.Equal(t, entity.POCancelled, cancelled.Status)

	// Lo recibido permanece en stock; el remanente ya no puede recibirse.
	assert.True(t, s.balances[it.ID].Equal(d("4")))
	_, err = uc.ReceiveLine(ctx, "user-1", po.Code, po.Lines[0].ID, d("1"))
	assert.ErrorIs(t, err, domain.ErrPOClosed)

	// Cancelar dos veces tampoco se permite.
	_, err = uc.CancelPO(ctx, "admin-1", po.Code)
	assert.ErrorIs(t, err, domain.ErrPOClosed)
}

func TestReceiveLine_OCCompletadaNoAceptaMas(t *testing.T) {
	s := newMemStore()
	s.addItem("MAT-0001")
	uc := newPurchaseUC(s)
	ctx := context.Background()

	po := createPO(t, uc, dto.POLineRequest{ItemCode: "MAT-0001", OrderedQty: d("5"), UnitCost: d("1")})
	_, err := uc.ReceiveLine(ctx, "user-1", po.Code, po.Lines[0].ID, d("5"))
	require.NoError(t, err)

	_, err = uc.ReceiveLine(ctx, "user-1", po.Code, po.Lines[0].ID, d("1"))
	assert.ErrorIs(t, err, domain.ErrPOClosed, "una OC completed ya no acepta recepciones")
}

func TestReceiveLine_VariasLineasDerivanEstadoGlobal(t *testing.T) {
	s := newMemStore()
	s.addItem("MAT-0001")
	s.addItem("MAT-0002")
	uc := newPurchaseUC(s)
	ctx := context.Background()

	po := createPO(t, uc,
		dto.POLineRequest{ItemCode: "MAT-0001", OrderedQty: d("10"), UnitCost: d("1")},
		dto.POLineRequest{ItemCode: "MAT-0002", OrderedQty: d("4"), UnitCost: d("3")},
	)

	// Completar solo la primera línea deja la OC en partially_received.
	po2, err := uc.ReceiveLine(ctx, "user-1", po.Code, po.Lines[0].ID, d("10"))
	require.NoError(t, err)
	assert.Equal(t, entity.POPartiallyReceived, po2.Status)

	// Completar la segunda la lleva a completed.
	po3, err := uc.ReceiveLine(ctx, "user-1", po.Code, po.Lines[1].ID, d("4"))
	require.NoError(t, err)
	assert.Equal(t, entity.POCompleted, po3.Status)
}
