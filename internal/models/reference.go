package models

type State struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type LGA struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	State string `json:"state"`
}

type Commodity struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Category string `json:"category"`
}

type CommodityCategory struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
