package sales

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

// SampleRecords is the demo dataset shown when no data source is configured.
func SampleRecords() []SaleRecord {
	return []SaleRecord{
		{
			ID:               "AMZ-1001",
			CustomerName:     "Carlos Silva",
			City:             "São Paulo, SP",
			ShippingStatus:   StatusDelivered,
			CustomerReceived: true,
			SaleDate:         "2023-10-01",
			ShipDate:         strPtr("2023-10-02"),
			ReceiptDate:      strPtr("2023-10-05"),
			DeliveryDays:     floatPtr(3),
			DeliveryPoint:    "Portaria",
			TrackingCode:     "BR123456789",
			SaleValue:        150.00,
			FreightReceived:  15.00,
			SaleWithFreight:  165.00,
			PurchaseCost:     80.00,
			FreightPaid:      18.00,
			MarketplaceFee:   24.75,
			TotalCosts:       122.75,
			Profit:           42.25,
			Quantity:         1,
			ProductID:        "B08X1234",
			Product:          "Fone de Ouvido Bluetooth",
			Notes:            "Cliente Prime",
		},
		{
			ID:              "AMZ-1002",
			CustomerName:    "Ana Souza",
			City:            "Rio de Janeiro, RJ",
			ShippingStatus:  StatusShipped,
			SaleDate:        "2023-10-05",
			ShipDate:        strPtr("2023-10-06"),
			DeliveryPoint:   "Em trânsito",
			TrackingCode:    "BR987654321",
			SaleValue:       2500.00,
			FreightReceived: 0,
			SaleWithFreight: 2500.00,
			PurchaseCost:    1900.00,
			FreightPaid:     45.00,
			MarketplaceFee:  412.50,
			TotalCosts:      2357.50,
			Profit:          142.50,
			Quantity:        1,
			ProductID:       "B09Y5678",
			Product:         "Monitor Gamer 27'",
			Notes:           "Envio frágil",
		},
		{
			ID:              "AMZ-1003",
			CustomerName:    "Marcos Oliveira",
			City:            "Curitiba, PR",
			ShippingStatus:  StatusProcessing,
			SaleDate:        "2023-10-08",
			DeliveryPoint:   "Aguardando",
			SaleValue:       45.00,
			FreightReceived: 12.00,
			SaleWithFreight: 57.00,
			PurchaseCost:    15.00,
			MarketplaceFee:  8.55,
			TotalCosts:      23.55,
			Profit:          33.45,
			Quantity:        2,
			ProductID:       "B07Z9012",
			Product:         "Cabo USB-C 2m",
		},
		{
			ID:              "AMZ-1004",
			CustomerName:    "Fernanda Lima",
			City:            "Belo Horizonte, MG",
			ShippingStatus:  StatusPending,
			SaleDate:        "2023-10-07",
			DeliveryPoint:   "Aguardando coleta",
			SaleValue:       120.00,
			FreightReceived: 20.00,
			SaleWithFreight: 140.00,
			PurchaseCost:    60.00,
			MarketplaceFee:  21.00,
			TotalCosts:      81.00,
			Profit:          59.00,
			Quantity:        1,
			ProductID:       "B05A3456",
			Product:         "Teclado Mecânico",
			Notes:           "Verificar estoque",
		},
		{
			ID:              "AMZ-1005",
			CustomerName:    "Roberto Santos",
			City:            "Porto Alegre, RS",
			ShippingStatus:  StatusReturned,
			SaleDate:        "2023-09-25",
			ShipDate:        strPtr("2023-09-26"),
			DeliveryPoint:   "Devolvido ao remetente",
			TrackingCode:    "BR55667788",
			SaleValue:       300.00,
			SaleWithFreight: 300.00,
			PurchaseCost:    150.00,
			FreightPaid:     25.00,
			MarketplaceFee:  45.00,
			TotalCosts:      220.00,
			Profit:          -25.00,
			Quantity:        1,
			ProductID:       "B02C7890",
			Product:         "Mochila Impermeável",
			Notes:           "Endereço não encontrado",
		},
	}
}
