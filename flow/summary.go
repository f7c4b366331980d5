package flow

import (
	"fmt"
	"strings"

	"github.com/saocarlos/refribot/order"
)

// renderSummary builds the order recap shown before finalization. The total
// is recomputed from the raw quantity strings; shipping stays flat.
func renderSummary(frag *order.Fragment) string {
	total := order.Total(frag.Quantities, order.UnitPrice)
	return fmt.Sprintf(`📝 Resumo do seu pedido:
Sabores: %s
Quantidades: %s
Valor Total: R$%.2f
Frete: R$%.2f
Forma de Pagamento: %s

✅ Seu pedido foi recebido! Ele será entregue em até 30 minutos.`,
		strings.Join(frag.Flavors, ", "),
		strings.Join(frag.Quantities, ", "),
		total,
		order.ShippingFee,
		frag.Payment)
}
