package report

import (
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/chatledger/internal/batch"
	"github.com/MrJamesThe3rd/chatledger/internal/stats"
)

// Templates holds the user-facing texts of one tracker.
type Templates struct {
	Marker           string
	Success          string
	MissingReference string
	Flagged          string
	Format           string
	Duplicate        string
	Closing          string
	Help             string
	// ListAccounts appends the valid account names to the help reply.
	ListAccounts bool
	// Stats renders the closing statistics paragraph.
	Stats func(m stats.Monthly, ref time.Time) string
}

const closing = "Em caso de dúvidas, envie uma mensagem contendo o caractere '?'"

const formatError = "As seguintes mensagens não foram registradas por erro de formatação:"

func Calories() Templates {
	return Templates{
		Marker:           batch.DefaultMarker,
		Success:          "As seguintes mensagens foram registradas corretamente:",
		MissingReference: "As seguinte mensagens não foram registradas por falta de registro de calorias:",
		Flagged:          "As seguintes entradas apresentam erro por falta de registro de calorias:",
		Format:           formatError,
		Duplicate:        "As seguintes mensagens não foram registradas pois a comida já possui registro de calorias:",
		Closing:          closing,
		Help:             caloriesHelp,
		Stats:            caloriesStats,
	}
}

func Expenses() Templates {
	return Templates{
		Marker:           batch.DefaultMarker,
		Success:          "As seguintes mensagens foram registradas:",
		MissingReference: "As seguintes mensagens não foram registradas por conta desconhecida:",
		Format:           formatError,
		Closing:          closing,
		Help:             expensesHelp,
		ListAccounts:     true,
		Stats:            expensesStats,
	}
}

func caloriesStats(m stats.Monthly, ref time.Time) string {
	return fmt.Sprintf(
		"No mês %s (excluindo hoje) foram gastas %.2f calorias (média %.2f +- %.2f).\nHoje foram gastas %.2f calorias.",
		ref.Format("01/2006"),
		m.PeriodTotal.InexactFloat64(),
		m.Mean,
		m.StdDev,
		m.DayTotal.InexactFloat64(),
	)
}

func expensesStats(m stats.Monthly, ref time.Time) string {
	return fmt.Sprintf("No mês %s houveram %d despesas totalizando R$ %s gastos",
		ref.Format("01/2006"), m.Count, m.PeriodTotal.Add(m.DayTotal).StringFixed(2))
}

const caloriesHelp = "As mensagens de consumo de comida devem ter o seguinte formato:\n" +
	"NOME_DA_COMIDA - NUMERO_UNIDADES UNIDADE\n" +
	"NOME_DA_COMIDA - Nome que identifica a comida, e.g., 'Mini Pão Swift'\n" +
	"NUMERO_UNIDADES - Quantidade de unidades consumidas, e.g., 3, 0.2, 1/2\n" +
	"UNIDADE - Unidade de medida usada, e.g., g, ml, un\n" +
	"Ex:\n" +
	"Batata Frita - 60g\n" +
	"Barra de Cereal Dia - 1/2 un\n" +
	"Suco de Laranja - 1 copo\n" +
	"Pizza - 800 cal\n\n" +
	"As mensagens de registro de caloria por unidade devem ter o seguinte formato:\n" +
	"@ NOME_DA_COMIDA - NUMERO_CALORIAS cal/NUMERO_UNIDADES UNIDADE\n" +
	"NOME_DA_COMIDA - Nome que identifica a comida, e.g., 'Mini Pão Swift'\n" +
	"NUMERO_CALORIAS - Valor numerico com ponto como separador decimal, e.g., 350, 72.3\n" +
	"NUMERO_UNIDADES - Quantidade de unidades referentes à quantidade de calorias, e.g., 3, 0.2, 1/2\n" +
	"UNIDADE - Unidade de medida utilizada, e.g., g, ml, un\n" +
	"Ex:\n" +
	"@ Pizza Lombo Sadia - 1200 cal/1 un\n" +
	"@ Mini Pão Swift - 124 cal/50g\n\n" +
	"É possível anotar diversos registros de consumo ou de caloria por unidade numa única mensagem. " +
	"Basta inserir cada registro em uma linha."

const expensesHelp = "As mensagens devem ter o seguinte formato:\n" +
	"PRECO - CONTRAPARTE - DESCRICAO - CONTA - DATA (OPCIONAL)\n" +
	"PRECO - Valor numerico com ponto ou vírgula como separador decimal, e.g., 70, 35.2, 19,94\n" +
	"CONTRAPARTE - Contraparte da despesa, e.g., Uber, Dia Santo Antonio\n" +
	"DESCRICAO - Descrição da despesa, e.g., Uber p/ shopping\n" +
	"CONTA - Conta usada para o pagamento, e.g., BB Corrente, XP Credito\n" +
	"DATA - Data da transação no formato DD/MM/AAAA. Se não for especificada, assume-se a data da mensagem\n\n" +
	"Ex:\n" +
	"19.94 - Uber - Uber p/ Hospital - NuBank Credito - 28/12/2023\n" +
	"20 - Loterica - Aposta Mega Virada - Dinheiro"
