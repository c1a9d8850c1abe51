package domain

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ошибку, если запись с таким ID уже существует.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(id string) (Order, error)
	// ListByCustomer возвращает заказы покупателя, новые первыми, с опциональным лимитом.
	ListByCustomer(customerID string, limit int) ([]Order, error)
	// ListBySeller возвращает заказы, содержащие хотя бы одну позицию продавца,
	// новые первыми. Позиции не фильтруются: проекция продавца строится выше.
	ListBySeller(sellerID string, limit int) ([]Order, error)
	// Save применяет обновления к заказу с учётом optimistic locking.
	Save(order Order) error
}

// ProductRepository описывает требования к хранилищу каталога.
type ProductRepository interface {
	// Put сохраняет или обновляет товар.
	Put(product Product) error
	// Get возвращает товар или ErrProductNotFound, если его нет.
	Get(id string) (Product, error)
	// FindByIDs возвращает найденные товары одним запросом; отсутствующие
	// идентификаторы просто не попадают в результат.
	FindByIDs(ids []string) ([]Product, error)
	// DecrementStock атомарно уменьшает остаток при условии stock >= qty.
	// При нехватке возвращает InsufficientStockError с доступным остатком.
	DecrementStock(id string, qty int32) error
	// RestoreStock возвращает остаток на место (компенсация неудачного размещения).
	RestoreStock(id string, qty int32) error
}

// AccountRepository описывает требования к хранилищу учётных записей.
type AccountRepository interface {
	// Put сохраняет или обновляет учётную запись.
	Put(account Account) error
	// Get возвращает учётную запись или ErrAccountNotFound, если её нет.
	Get(id string) (Account, error)
}

// HistoryRepository хранит историю смен статуса заказа.
type HistoryRepository interface {
	Append(change StatusChange) error
	List(orderID string) ([]StatusChange, error)
}
