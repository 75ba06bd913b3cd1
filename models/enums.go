package models

type TransactionType string

const (
	TransactionTypeSale     TransactionType = "SALE"
	TransactionTypePayment  TransactionType = "PAYMENT"
	TransactionTypeExpense  TransactionType = "EXPENSE"
	TransactionTypePurchase TransactionType = "PURCHASE"
)

type TransactionDirection string

const (
	TransactionDirectionIn  TransactionDirection = "IN"
	TransactionDirectionOut TransactionDirection = "OUT"
)

type EntrySource string

const (
	EntrySourceSale    EntrySource = "SALE"
	EntrySourceVoiceAI EntrySource = "VOICE_AI"
	EntrySourceManual  EntrySource = "MANUAL"
	EntrySourceSystem  EntrySource = "SYSTEM"
)

type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "CASH"
	PaymentModeUpi    PaymentMode = "UPI"
	PaymentModeCard   PaymentMode = "CARD"
	PaymentModeBank   PaymentMode = "BANK"
	PaymentModeCredit PaymentMode = "CREDIT"
)

type SupplierTransactionType string

const (
	SupplierTransactionTypePurchase   SupplierTransactionType = "PURCHASE"
	SupplierTransactionTypePayment    SupplierTransactionType = "PAYMENT"
	SupplierTransactionTypeAdjustment SupplierTransactionType = "ADJUSTMENT"
)

type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

type VoiceSaleStatus string

const (
	VoiceSaleStatusPending   VoiceSaleStatus = "pending"
	VoiceSaleStatusConfirmed VoiceSaleStatus = "confirmed"
	VoiceSaleStatusRejected  VoiceSaleStatus = "rejected"
)

type CapitalTransactionType string

const (
	CapitalTransactionTypeCredit CapitalTransactionType = "CREDIT"
	CapitalTransactionTypeDebit  CapitalTransactionType = "DEBIT"
)

type CapitalCategory string

const (
	CapitalCategorySales      CapitalCategory = "SALES"
	CapitalCategoryPurchase   CapitalCategory = "PURCHASE"
	CapitalCategoryExpense    CapitalCategory = "EXPENSE"
	CapitalCategoryInvestment CapitalCategory = "INVESTMENT"
	CapitalCategoryWithdrawal CapitalCategory = "WITHDRAWAL"
)

type CapitalMode string

const (
	CapitalModeCash CapitalMode = "CASH"
	CapitalModeBank CapitalMode = "BANK"
	CapitalModeUpi  CapitalMode = "UPI"
)

type StockChannel string

const (
	StockChannelOffline StockChannel = "offline"
	StockChannelOnline  StockChannel = "online"
)

// ReferenceModel names the originating document of a ledger row.
type ReferenceModel string

const (
	ReferenceModelSale                ReferenceModel = "Sale"
	ReferenceModelPurchase            ReferenceModel = "Purchase"
	ReferenceModelVoiceSale           ReferenceModel = "VoiceSale"
	ReferenceModelSupplierTransaction ReferenceModel = "SupplierTransaction"
)
