package domain

// SampleTransactions returns a small demo dataset so the dashboard can be
// exercised without a connected sheet.
func SampleTransactions() []Transaction {
	return []Transaction{
		{ID: "1", Date: "2023-10-01", Description: "Gaji Bulanan", Amount: 8000000, Category: "Income", Type: Income},
		{ID: "2", Date: "2023-10-02", Description: "Belanja Mingguan", Amount: 500000, Category: "Food & Dining", Type: Expense},
		{ID: "3", Date: "2023-10-03", Description: "Gojek/Grab", Amount: 35000, Category: "Transportation", Type: Expense},
		{ID: "4", Date: "2023-10-05", Description: "Netflix", Amount: 186000, Category: "Entertainment", Type: Expense},
		{ID: "5", Date: "2023-10-05", Description: "Token Listrik", Amount: 200000, Category: "Utilities", Type: Expense},
		{ID: "6", Date: "2023-10-10", Description: "Tokopedia", Amount: 150000, Category: "Shopping", Type: Expense},
		{ID: "7", Date: "2023-10-12", Description: "Gym Membership", Amount: 350000, Category: "Health & Fitness", Type: Expense},
		{ID: "8", Date: "2023-10-15", Description: "Bensin Pertamina", Amount: 50000, Category: "Transportation", Type: Expense},
		{ID: "9", Date: "2023-10-18", Description: "Kopi Kenangan", Amount: 25000, Category: "Food & Dining", Type: Expense},
		{ID: "10", Date: "2023-10-20", Description: "Bayar Kost", Amount: 2000000, Category: "Housing", Type: Expense},
		{ID: "11", Date: "2023-10-25", Description: "Proyek Freelance", Amount: 1500000, Category: "Income", Type: Income},
		{ID: "12", Date: "2023-10-28", Description: "Indomaret", Amount: 45000, Category: "Shopping", Type: Expense},
	}
}
