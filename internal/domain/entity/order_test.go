package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Fabrica-api/internal/domain/entity"
)

func TestCanTransition_CaminoFeliz(t *testing.T) {
	camino := []string{
		entity.OrderPending, entity.OrderUnderProcess, entity.OrderReady,
		entity.OrderShipped, entity.OrderDelivered, entity.OrderCompleted,
	}
	for i := 0; i < len(camino)-1; i++ {
		assert.True(t, entity.CanTransition(camino[i], camino[i+1]),
			"debe permitirse %s -> %s", camino[i], camino[i+1])
	}
}

func TestCanTransition_NoSePuedeSaltarEstados(t *testing.T) {
	assert.False(t, entity.CanTransition(entity.OrderPending, entity.OrderReady))
	assert.False(t, entity.CanTransition(entity.OrderPending, entity.OrderShipped))
	assert.False(t, entity.CanTransition(entity.OrderUnderProcess, entity.OrderDelivered))
	assert.False(t, entity.CanTransition(entity.OrderReady, entity.OrderCompleted))
}

func TestCanTransition_NoSePuedeRetroceder(t *testing.T) {
	assert.False(t, entity.CanTransition(entity.OrderReady, entity.OrderPending))
	assert.False(t, entity.CanTransition(entity.OrderShipped, entity.OrderReady))
	assert.False(t, entity.CanTransition(entity.OrderDelivered, entity.OrderShipped))
}

// La cancelación solo es alcanzable antes del despacho: una vez consumido el
// stock, cancelar exigiría una devolución que este motor no modela.
func TestCanTransition_CancelacionSoloAntesDelDespacho(t *testing.T) {
	assert.True(t, entity.CanTransition(entity.OrderPending, entity.OrderCancelled))
	assert.True(t, entity.CanTransition(entity.OrderUnderProcess, entity.OrderCancelled))
	assert.True(t, entity.CanTransition(entity.OrderReady, entity.OrderCancelled))

	assert.False(t, entity.CanTransition(entity.OrderShipped, entity.OrderCancelled))
	assert.False(t, entity.CanTransition(entity.OrderDelivered, entity.OrderCancelled))
	assert.False(t, entity.CanTransition(entity.OrderCompleted, entity.OrderCancelled))
}

func TestCanTransition_EstadosTerminalesNoSalen(t *testing.T) {
	for _, terminal := range []string{entity.OrderCompleted, entity.OrderCancelled} {
		for _, destino := range []string{
			entity.OrderPending, entity.OrderUnderProcess, entity.OrderReady,
			entity.OrderShipped, entity.OrderDelivered, entity.OrderCompleted, entity.OrderCancelled,
		} {
			assert.False(t, entity.CanTransition(terminal, destino),
				"%s es terminal, no debe transicionar a %s", terminal, destino)
		}
		assert.True(t, entity.OrderTerminal(terminal))
	}
}

func TestComputeTotal_SumaExtensiones(t *testing.T) {
	o := &entity.Order{Lines: []entity.OrderLine{
		{Quantity: d("2"), UnitPrice: d("10.50")},
		{Quantity: d("3"), UnitPrice: d("4")},
	}}
	assert.True(t, o.ComputeTotal().Equal(d("33")), "2*10.50 + 3*4 = 33")
}
