package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTickets(t *testing.T) {
	csv := "GUID клиента,Текст обращения,Населенный пункт,Область,Страна,Сегмент клиента,lat,lon\n" +
		"g1,Не работает приложение,Алматы / Астана,,Казахстан,вип,,\n" +
		"g2,Вопрос по тарифам,NULL,Карагандинская,Казахстан,MASS,49.8,73.1\n"

	tickets, err := LoadTickets(writeFile(t, "tickets.csv", csv))
	require.NoError(t, err)
	require.Len(t, tickets, 2)

	first := tickets[0]
	assert.Equal(t, "g1", first.GUID)
	assert.Equal(t, "Не работает приложение", first.Text)
	assert.Equal(t, "Алматы", first.City) // slash part dropped
	assert.Equal(t, "VIP", first.Segment) // ВИП folded
	assert.Equal(t, "Казахстан", first.Country)
	assert.Nil(t, first.Lat)

	second := tickets[1]
	assert.Equal(t, "", second.City) // NULL folded to empty
	assert.Equal(t, "Карагандинская", second.Region)
	require.NotNil(t, second.Lat)
	assert.Equal(t, 49.8, *second.Lat)
	assert.Equal(t, 73.1, *second.Lon)
}

func TestLoadTicketsMissingColumns(t *testing.T) {
	csv := "guid,city\ng1,Алматы\n"
	_, err := LoadTickets(writeFile(t, "tickets.csv", csv))
	assert.Error(t, err)
}

func TestLoadManagers(t *testing.T) {
	csv := "ФИО,Должность,Навыки,Бизнес-единица,Кол-во обращений в работе\n" +
		"Иванов И.И.,Главный специалист,VIP; KZ,Астана,3\n" +
		"Петров П.П.,Специалист,eng,Алматы,abc\n"

	managers, err := LoadManagers(writeFile(t, "managers.csv", csv))
	require.NoError(t, err)
	require.Len(t, managers, 2)

	first := managers[0]
	assert.Equal(t, "Иванов И.И.", first.Name)
	assert.Equal(t, "Астана", first.Office)
	assert.Equal(t, 3, first.Load)
	assert.True(t, first.Skills["VIP"])
	assert.True(t, first.Skills["KZ"])

	second := managers[1]
	assert.Equal(t, 0, second.Load) // corrupt load coerced
	assert.True(t, second.Skills["ENG"])
}

func TestLoadOffices(t *testing.T) {
	csv := "Офис,Адрес,lat,lon\n" +
		"Астана,пр. Кабанбай батыра 1,51.17,71.45\n" +
		"Экибастуз,,,\n"

	offices, err := LoadOffices(writeFile(t, "offices.csv", csv))
	require.NoError(t, err)
	require.Len(t, offices, 2)

	assert.Equal(t, "Астана", offices[0].Name)
	require.NotNil(t, offices[0].Lat)
	assert.Equal(t, 51.17, *offices[0].Lat)

	assert.Equal(t, "Экибастуз", offices[1].Name)
	assert.Nil(t, offices[1].Lat)
}

func TestParseSkills(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"VIP; KZ", []string{"VIP", "KZ"}},
		{"vip,kz,eng", []string{"VIP", "KZ", "ENG"}},
		{"", nil},
		{" ; , ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseSkills(tt.in)
			assert.Len(t, got, len(tt.want))
			for _, s := range tt.want {
				assert.True(t, got[s], "missing skill %s", s)
			}
		})
	}
}

func TestAlternateHeaders(t *testing.T) {
	csv := "ФИО,Должность,Навыки,Офис,Нагрузка\nСидоров,Специалист,,Астана,1\n"
	managers, err := LoadManagers(writeFile(t, "managers.csv", csv))
	require.NoError(t, err)
	require.Len(t, managers, 1)
	assert.Equal(t, 1, managers[0].Load)
}
