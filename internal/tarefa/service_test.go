package tarefa

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type stubRepo struct {
	tarefas map[uuid.UUID]Tarefa
}

func newStubRepo() *stubRepo {
	return &stubRepo{tarefas: make(map[uuid.UUID]Tarefa)}
}

func (s *stubRepo) Insert(ctx context.Context, t *Tarefa) error {
	s.tarefas[t.ID] = *t
	return nil
}

func (s *stubRepo) Get(ctx context.Context, id uuid.UUID) (*Tarefa, error) {
	t, ok := s.tarefas[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := t
	return &clone, nil
}

func (s *stubRepo) Save(ctx context.Context, t *Tarefa) error {
	if _, ok := s.tarefas[t.ID]; !ok {
		return ErrNotFound
	}
	s.tarefas[t.ID] = *t
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.tarefas[id]; !ok {
		return ErrNotFound
	}
	delete(s.tarefas, id)
	return nil
}

func (s *stubRepo) List(ctx context.Context, f Filtros) ([]Tarefa, error) {
	var result []Tarefa
	for _, t := range s.tarefas {
		if f.AssignedTo != "" && t.AssignedTo != f.AssignedTo {
			continue
		}
		if f.Setor != "" && t.Setor != f.Setor {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

func (s *stubRepo) ListUnassigned(ctx context.Context) ([]Tarefa, error) {
	var result []Tarefa
	for _, t := range s.tarefas {
		if t.AssignedTo == "" {
			result = append(result, t)
		}
	}
	return result, nil
}

type stubZeladores struct {
	emails map[uuid.UUID]string
}

func (s *stubZeladores) EmailByID(ctx context.Context, id uuid.UUID) (string, error) {
	email, ok := s.emails[id]
	if !ok {
		return "", errors.New("zelador não encontrado")
	}
	return email, nil
}

func novoServico() (*Service, *stubRepo, *stubZeladores) {
	repo := newStubRepo()
	zeladores := &stubZeladores{emails: make(map[uuid.UUID]string)}
	return NewService(repo, zeladores), repo, zeladores
}

func criarTarefa(t *testing.T, svc *Service, checklist []NovoItemChecklist) *Tarefa {
	t.Helper()
	criada, err := svc.Criar(context.Background(), CriarInput{
		Title:             "Limpeza do saguão",
		Setor:             "Terminal 1",
		ScheduledTime:     "08:00",
		EstimatedDuration: 30,
		Checklist:         checklist,
	})
	if err != nil {
		t.Fatalf("criar tarefa: %v", err)
	}
	return criada
}

func TestCriarForcaStatusPendente(t *testing.T) {
	svc, _, _ := novoServico()

	criada := criarTarefa(t, svc, []NovoItemChecklist{
		{Question: "Piso limpo?"},
		{Question: "Esteira funcionando?", IsEquipment: true, EquipmentName: "Esteira 3"},
	})

	if criada.Status != StatusPendente {
		t.Fatalf("esperado PENDING, veio %s", criada.Status)
	}
	if criada.Priority != PrioridadeMedia {
		t.Fatalf("esperada prioridade medium, veio %s", criada.Priority)
	}
	if criada.CreatedAt.IsZero() {
		t.Fatal("createdAt não foi carimbado")
	}
	if len(criada.Checklist) != 2 {
		t.Fatalf("esperados 2 itens, vieram %d", len(criada.Checklist))
	}
	for _, item := range criada.Checklist {
		if item.ID == "" {
			t.Fatal("item de checklist sem id")
		}
		if item.Status != ItemPendente {
			t.Fatalf("item deveria nascer PENDING, veio %s", item.Status)
		}
	}
}

func TestCriarRejeitaDuracaoInvalida(t *testing.T) {
	svc, _, _ := novoServico()

	_, err := svc.Criar(context.Background(), CriarInput{
		Title:             "Sem duração",
		Setor:             "Terminal 1",
		EstimatedDuration: 0,
	})
	if err == nil {
		t.Fatal("esperado erro de duração")
	}
}

func TestAtualizarConcluidaCarimbaCompletedAt(t *testing.T) {
	svc, _, _ := novoServico()
	criada := criarTarefa(t, svc, nil)

	status := StatusConcluida
	atualizada, err := svc.Atualizar(context.Background(), criada.ID, AtualizarInput{Status: &status})
	if err != nil {
		t.Fatalf("atualizar: %v", err)
	}

	if atualizada.CompletedAt == nil {
		t.Fatal("completedAt deveria ter sido carimbado")
	}
	if atualizada.CompletedAt.Before(atualizada.CreatedAt) {
		t.Fatal("completedAt anterior a createdAt")
	}

	// tarefa concluída é terminal
	pendente := StatusPendente
	if _, err := svc.Atualizar(context.Background(), criada.ID, AtualizarInput{Status: &pendente}); !errors.Is(err, ErrTransicaoInvalida) {
		t.Fatalf("esperado ErrTransicaoInvalida, veio %v", err)
	}
}

func TestConcluirExigeChecklistRespondido(t *testing.T) {
	svc, _, _ := novoServico()
	criada := criarTarefa(t, svc, []NovoItemChecklist{{Question: "Vidros limpos?"}})

	if _, err := svc.Concluir(context.Background(), criada.ID); !errors.Is(err, ErrChecklistIncompleto) {
		t.Fatalf("esperado ErrChecklistIncompleto, veio %v", err)
	}

	ok := ItemOK
	itemID := criada.Checklist[0].ID
	if _, err := svc.AtualizarItemChecklist(context.Background(), criada.ID, itemID, AtualizarItemInput{Status: &ok}); err != nil {
		t.Fatalf("responder item: %v", err)
	}

	concluida, err := svc.Concluir(context.Background(), criada.ID)
	if err != nil {
		t.Fatalf("concluir: %v", err)
	}
	if concluida.Status != StatusConcluida {
		t.Fatalf("esperado COMPLETED, veio %s", concluida.Status)
	}
	if concluida.CompletedAt == nil {
		t.Fatal("completedAt ausente após conclusão")
	}
}

func TestItemNaoConformeExigeObservacao(t *testing.T) {
	svc, _, _ := novoServico()
	criada := criarTarefa(t, svc, []NovoItemChecklist{{Question: "Extintor na validade?"}})

	naoConforme := ItemNaoConforme
	itemID := criada.Checklist[0].ID

	_, err := svc.AtualizarItemChecklist(context.Background(), criada.ID, itemID, AtualizarItemInput{Status: &naoConforme})
	if !errors.Is(err, ErrObservacaoObrigatoria) {
		t.Fatalf("esperado ErrObservacaoObrigatoria, veio %v", err)
	}

	obs := "extintor vencido desde julho"
	atualizada, err := svc.AtualizarItemChecklist(context.Background(), criada.ID, itemID, AtualizarItemInput{Status: &naoConforme, Observation: &obs})
	if err != nil {
		t.Fatalf("atualizar item: %v", err)
	}
	if atualizada.Checklist[0].Observation != obs {
		t.Fatalf("observação não persistida: %q", atualizada.Checklist[0].Observation)
	}
}

func TestAtualizarItemInexistente(t *testing.T) {
	svc, _, _ := novoServico()
	criada := criarTarefa(t, svc, []NovoItemChecklist{{Question: "Lixeiras vazias?"}})

	ok := ItemOK
	_, err := svc.AtualizarItemChecklist(context.Background(), criada.ID, "nao-existe", AtualizarItemInput{Status: &ok})
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("esperado ErrItemNotFound, veio %v", err)
	}
}

func TestAtribuirZeladorInexistenteNaoAlteraTarefa(t *testing.T) {
	svc, repo, _ := novoServico()
	criada := criarTarefa(t, svc, nil)

	_, err := svc.Atribuir(context.Background(), criada.ID, uuid.New())
	if !errors.Is(err, ErrZeladorNaoEncontrado) {
		t.Fatalf("esperado ErrZeladorNaoEncontrado, veio %v", err)
	}

	guardada := repo.tarefas[criada.ID]
	if guardada.AssignedTo != "" {
		t.Fatalf("tarefa não deveria ter sido atribuída, veio %q", guardada.AssignedTo)
	}
}

func TestAtribuirGravaEmailDoZelador(t *testing.T) {
	svc, _, zeladores := novoServico()
	criada := criarTarefa(t, svc, nil)

	zeladorID := uuid.New()
	zeladores.emails[zeladorID] = "joao@aeroporto.com"

	atribuida, err := svc.Atribuir(context.Background(), criada.ID, zeladorID)
	if err != nil {
		t.Fatalf("atribuir: %v", err)
	}
	if atribuida.AssignedTo != "joao@aeroporto.com" {
		t.Fatalf("esperado e-mail do zelador, veio %q", atribuida.AssignedTo)
	}
}

func TestIniciarAposAtraso(t *testing.T) {
	svc, _, _ := novoServico()
	criada := criarTarefa(t, svc, nil)

	atrasada, err := svc.Atrasar(context.Background(), criada.ID)
	if err != nil {
		t.Fatalf("atrasar: %v", err)
	}
	if atrasada.Status != StatusAtrasada {
		t.Fatalf("esperado OVERDUE, veio %s", atrasada.Status)
	}

	iniciada, err := svc.Iniciar(context.Background(), criada.ID)
	if err != nil {
		t.Fatalf("iniciar: %v", err)
	}
	if iniciada.Status != StatusEmAndamento {
		t.Fatalf("esperado IN_PROGRESS, veio %s", iniciada.Status)
	}

	// tarefa em andamento não volta a atrasar
	if _, err := svc.Atrasar(context.Background(), criada.ID); !errors.Is(err, ErrTransicaoInvalida) {
		t.Fatalf("esperado ErrTransicaoInvalida, veio %v", err)
	}
}

func TestListarNaoAtribuidas(t *testing.T) {
	svc, _, zeladores := novoServico()
	semDono := criarTarefa(t, svc, nil)
	comDono := criarTarefa(t, svc, nil)

	zeladorID := uuid.New()
	zeladores.emails[zeladorID] = "maria@aeroporto.com"
	if _, err := svc.Atribuir(context.Background(), comDono.ID, zeladorID); err != nil {
		t.Fatalf("atribuir: %v", err)
	}

	livres, err := svc.ListarNaoAtribuidas(context.Background())
	if err != nil {
		t.Fatalf("listar: %v", err)
	}
	if len(livres) != 1 || livres[0].ID != semDono.ID {
		t.Fatalf("esperada apenas a tarefa sem dono, veio %v", livres)
	}
}
